package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBooking/internal/testutil"
	"github.com/m04kA/SMC-VenueBooking/migrations"
)

func TestApply_RecordsMigrations(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS schema_migrations`)
	require.NoError(t, err)

	require.NoError(t, migrations.Apply(ctx, db))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	require.Equal(t, 2, count)

	require.NoError(t, migrations.Apply(ctx, db), "re-apply must be a no-op")

	var count2 int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count2))
	require.Equal(t, count, count2)

	var constraints int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pg_constraint WHERE conname = 'reservations_approved_no_overlap'`,
	).Scan(&constraints))
	require.Equal(t, 1, constraints)
}
