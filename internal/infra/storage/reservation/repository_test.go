package reservation_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	"github.com/m04kA/SMC-VenueBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-VenueBooking/internal/integrations/venuecatalog"
	"github.com/m04kA/SMC-VenueBooking/internal/service/availability"
	"github.com/m04kA/SMC-VenueBooking/internal/testutil"
	createReservation "github.com/m04kA/SMC-VenueBooking/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-VenueBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-VenueBooking/pkg/logger"
	"github.com/m04kA/SMC-VenueBooking/pkg/ptr"
	"github.com/m04kA/SMC-VenueBooking/pkg/txmanager"
	"github.com/m04kA/SMC-VenueBooking/pkg/types"
)

func setup(t *testing.T) (*reservation.Repository, *txmanager.TransactionManager) {
	t.Helper()
	repo, tm, _ := setupDB(t)
	return repo, tm
}

func setupDB(t *testing.T) (*reservation.Repository, *txmanager.TransactionManager, *sql.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, db)
	testutil.TruncateAll(t, ctx, db)

	wrapped := dbmetrics.Wrap(db, nil)
	return reservation.NewRepository(wrapped), txmanager.NewTransactionManager(wrapped), db
}

func newReservation(t *testing.T, venueID int64, day time.Time, start, end string) *domain.Reservation {
	t.Helper()
	w, err := domain.NewTimeWindow(day, start, end)
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.NewPendingReservation(venueID, 100, w, "weekly seminar", nil, now)
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()
	series := uuid.New()
	day := time.Date(2030, time.June, 10, 0, 0, 0, 0, time.UTC)

	r := newReservation(t, 1, day, "10:00", "12:00")
	r.SeriesID = &series
	created, err := repo.Create(ctx, r)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.VenueID)
	assert.Equal(t, day, got.Date)
	assert.Equal(t, "10:00", got.StartTime.String())
	assert.Equal(t, "12:00", got.EndTime.String())
	assert.Equal(t, domain.StatusPending, got.Status)
	require.NotNil(t, got.SeriesID)
	assert.Equal(t, series, *got.SeriesID)
	assert.Nil(t, got.ApproverID)
	assert.Nil(t, got.DeclineReason)

	_, err = repo.GetByID(ctx, created.ID+1000)
	assert.ErrorIs(t, err, reservation.ErrReservationNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_GetByFilter(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()
	day := time.Date(2030, time.June, 10, 0, 0, 0, 0, time.UTC)

	first, err := repo.Create(ctx, newReservation(t, 1, day, "14:00", "15:00"))
	require.NoError(t, err)
	second, err := repo.Create(ctx, newReservation(t, 1, day, "09:00", "10:00"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newReservation(t, 2, day, "09:00", "10:00"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newReservation(t, 1, day.AddDate(0, 0, 1), "09:00", "10:00"))
	require.NoError(t, err)

	require.NoError(t, second.Approve(500, time.Now()))
	require.NoError(t, repo.UpdateLifecycle(ctx, second))

	venueID := int64(1)
	all, err := repo.GetByFilter(ctx, domain.ReservationsFilter{VenueID: &venueID, Dates: []time.Time{day}})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "sorted by start time")
	assert.Equal(t, first.ID, all[1].ID)

	approved, err := repo.GetByFilter(ctx, domain.ReservationsFilter{
		VenueID:  &venueID,
		Dates:    []time.Time{day},
		Statuses: domain.SlotHoldingStatuses,
	})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, second.ID, approved[0].ID)
	require.NotNil(t, approved[0].ApproverID)
	assert.Equal(t, int64(500), *approved[0].ApproverID)

	end := day.AddDate(0, 0, 1)
	ranged, err := repo.GetByFilter(ctx, domain.ReservationsFilter{
		VenueID:    &venueID,
		StartDate:  &day,
		EndDate:    &end,
		ExcludeIDs: []int64{first.ID},
	})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)
}

func TestRepository_LockVenueRequiresTransaction(t *testing.T) {
	repo, tm := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.LockVenue(ctx, 1), reservation.ErrTransaction)

	err := tm.DoSerializable(ctx, func(txCtx context.Context) error {
		return repo.LockVenue(txCtx, 1)
	})
	assert.NoError(t, err)
}

func TestRepository_ExclusionConstraintRejectsOverlappingApproved(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()
	day := time.Date(2030, time.June, 10, 0, 0, 0, 0, time.UTC)

	a, err := repo.Create(ctx, newReservation(t, 1, day, "10:00", "12:00"))
	require.NoError(t, err)
	b, err := repo.Create(ctx, newReservation(t, 1, day, "11:00", "13:00"))
	require.NoError(t, err)
	c, err := repo.Create(ctx, newReservation(t, 1, day, "12:00", "13:00"))
	require.NoError(t, err)

	require.NoError(t, a.Approve(500, time.Now()))
	require.NoError(t, repo.UpdateLifecycle(ctx, a))

	require.NoError(t, b.Approve(500, time.Now()))
	err = repo.UpdateLifecycle(ctx, b)
	require.Error(t, err)
	assert.True(t, reservation.IsSlotConflict(err))
	assert.ErrorIs(t, err, domain.ErrSlotConflict)

	require.NoError(t, c.Approve(500, time.Now()))
	assert.NoError(t, repo.UpdateLifecycle(ctx, c), "back-to-back windows do not overlap")
}

func TestVenueLockKey(t *testing.T) {
	assert.Equal(t, int32(7), reservation.VenueLockKey(7))
	assert.Equal(t, int32(731902455), reservation.VenueLockKey(731902455))
	assert.Equal(t, int32(1), reservation.VenueLockKey(1<<32), "high bits are folded into the key")
}

func TestRepository_LockVenueDoesNotContendWithMigrationLock(t *testing.T) {
	repo, tm, db := setupDB(t)
	ctx := context.Background()
	const migrationLockID int64 = 731902455

	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, migrationLockID)
	require.NoError(t, err)
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockID)
	}()

	lockCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	err = tm.Do(lockCtx, func(txCtx context.Context) error {
		return repo.LockVenue(txCtx, migrationLockID)
	})
	assert.NoError(t, err, "venue lock with the same numeric id must not wait for the migration lock")
}

type catalogVenue struct{}

func (catalogVenue) GetVenue(_ context.Context, id int64) (*venuecatalog.Venue, error) {
	return &venuecatalog.Venue{ID: id, OpenTime: "08:00", CloseTime: "22:00", IsActive: true}, nil
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, ...domain.LifecycleEvent) error { return nil }

type discardMetrics struct{}

func (discardMetrics) ReservationsCreated(string, int) {}
func (discardMetrics) SlotConflict(string)             {}

type clockAt time.Time

func (c clockAt) Now() time.Time { return time.Time(c) }

func TestCreateReservation_ConcurrentOverlappingRequestsOnPostgres(t *testing.T) {
	repo, tm := setup(t)
	uc := createReservation.NewUseCase(
		repo,
		availability.NewChecker(repo),
		catalogVenue{},
		tm,
		discardPublisher{},
		discardMetrics{},
		logger.Nop(),
		createReservation.Options{PendingBlocksPending: true, Location: time.UTC},
	).WithTimeProvider(clockAt(time.Date(2030, time.June, 1, 9, 0, 0, 0, time.UTC)))

	const workers = 12
	day := time.Date(2030, time.June, 10, 0, 0, 0, 0, time.UTC)

	errs := make([]error, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			start, end := "10:00", "12:00"
			if i%2 == 1 {
				start, end = "11:00", "13:00"
			}
			_, errs[i] = uc.Execute(context.Background(), &createReservation.Request{
				RequesterID: int64(100 + i),
				VenueID:     3,
				Date:        day,
				StartTime:   types.TimeString(start),
				EndTime:     types.TimeString(end),
				Purpose:     "board meeting",
				Recurrence:  domain.Once(),
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrSlotConflict)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := repo.GetByFilter(context.Background(), domain.ReservationsFilter{VenueID: ptr.Ptr(int64(3))})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
