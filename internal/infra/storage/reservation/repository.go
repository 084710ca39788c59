package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	"github.com/m04kA/SMC-VenueBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-VenueBooking/pkg/psqlbuilder"
)

const table = "reservations"

// venueLockClass первый ключ двухключевой advisory-блокировки площадки.
// Двухключевые блокировки не пересекаются с одноключевыми (миграции).
const venueLockClass int32 = 0x56454e55

var columns = []string{
	"id",
	"venue_id",
	"requester_id",
	"approver_id",
	"series_id",
	"reservation_date",
	"start_time",
	"end_time",
	"purpose",
	"status",
	"decline_reason",
	"cancellation_reason",
	"cancelled_by",
	"created_at",
	"status_changed_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями площадок
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockVenue берёт транзакционную advisory-блокировку площадки.
// Блокировка снимается при commit/rollback, поэтому вызывать можно только внутри транзакции.
// Все записи, которые могут занять слот площадки, проходят через неё по очереди.
func (r *Repository) LockVenue(ctx context.Context, venueID int64) error {
	tx, ok := dbmetrics.TxFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: LockVenue venue_id=%d", ErrTransaction, venueID)
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, venueLockClass, VenueLockKey(venueID)); err != nil {
		return wrapExecError("LockVenue", err)
	}
	return nil
}

// VenueLockKey второй ключ блокировки площадки: ID, свёрнутый в int4.
// Совпадение ключей у разных площадок только сериализует их записи.
func VenueLockKey(venueID int64) int32 {
	return int32(venueID ^ (venueID >> 32))
}

// Create сохраняет новое бронирование и заполняет его ID
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"venue_id",
			"requester_id",
			"series_id",
			"reservation_date",
			"start_time",
			"end_time",
			"purpose",
			"status",
			"created_at",
			"status_changed_at",
			"updated_at",
		).
		Values(
			reservation.VenueID,
			reservation.RequesterID,
			reservation.SeriesID,
			reservation.Date,
			reservation.StartTime,
			reservation.EndTime,
			reservation.Purpose,
			reservation.Status,
			reservation.CreatedAt,
			reservation.StatusChangedAt,
			reservation.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&reservation.ID); err != nil {
		return nil, wrapExecError("Create - execute insert", err)
	}

	return reservation, nil
}

// CreateBatch сохраняет все бронирования по порядку
// Атомарность обеспечивает транзакция вызывающего кода
func (r *Repository) CreateBatch(ctx context.Context, reservations []*domain.Reservation) ([]*domain.Reservation, error) {
	created := make([]*domain.Reservation, 0, len(reservations))
	for _, reservation := range reservations {
		res, err := r.Create(ctx, reservation)
		if err != nil {
			return nil, err
		}
		created = append(created, res)
	}
	return created, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE) до её завершения
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	reservation, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %v", ErrScanRow, err)
	}

	return reservation, nil
}

// GetByFilter получает бронирования с гибкой фильтрацией
// Поддерживает фильтрацию по:
// - площадке и автору заявки
// - конкретным датам (Dates) или периоду (StartDate, EndDate)
// - статусам (Statuses), пустой список = все статусы
// - исключению конкретных бронирований (ExcludeIDs)
//
// Результат отсортирован по дате и времени начала (ASC)
func (r *Repository) GetByFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).From(table)

	if filter.VenueID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"venue_id": *filter.VenueID})
	}
	if filter.RequesterID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"requester_id": *filter.RequesterID})
	}

	// Фильтрация по датам
	if len(filter.Dates) > 0 {
		dates := make([]string, len(filter.Dates))
		for i, d := range filter.Dates {
			dates[i] = d.Format(domain.DateFormat)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"reservation_date": dates})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"reservation_date": filter.StartDate.Format(domain.DateFormat)})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"reservation_date": filter.EndDate.Format(domain.DateFormat)})
	}

	// Фильтрация по статусам
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statuses})
	}

	if len(filter.ExcludeIDs) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": filter.ExcludeIDs})
	}

	query, args, err := selectBuilder.
		OrderBy("reservation_date ASC", "start_time ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapExecError("GetByFilter - execute query", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// UpdateLifecycle сохраняет результат перехода статуса
// Временные поля и площадка никогда не обновляются
func (r *Repository) UpdateLifecycle(ctx context.Context, reservation *domain.Reservation) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", reservation.Status).
		Set("approver_id", reservation.ApproverID).
		Set("decline_reason", reservation.DeclineReason).
		Set("cancellation_reason", reservation.CancellationReason).
		Set("cancelled_by", reservation.CancelledBy).
		Set("status_changed_at", reservation.StatusChangedAt).
		Set("updated_at", reservation.UpdatedAt).
		Where(squirrel.Eq{"id": reservation.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateLifecycle - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapExecError("UpdateLifecycle - execute update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateLifecycle - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var reservation domain.Reservation
	var approverID, cancelledBy sql.NullInt64
	var seriesID uuid.NullUUID
	var declineReason, cancellationReason sql.NullString

	err := row.Scan(
		&reservation.ID,
		&reservation.VenueID,
		&reservation.RequesterID,
		&approverID,
		&seriesID,
		&reservation.Date,
		&reservation.StartTime,
		&reservation.EndTime,
		&reservation.Purpose,
		&reservation.Status,
		&declineReason,
		&cancellationReason,
		&cancelledBy,
		&reservation.CreatedAt,
		&reservation.StatusChangedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	reservation.Date = domain.DateOnly(reservation.Date)
	if approverID.Valid {
		reservation.ApproverID = &approverID.Int64
	}
	if cancelledBy.Valid {
		reservation.CancelledBy = &cancelledBy.Int64
	}
	if seriesID.Valid {
		reservation.SeriesID = &seriesID.UUID
	}
	if declineReason.Valid {
		reservation.DeclineReason = &declineReason.String
	}
	if cancellationReason.Valid {
		reservation.CancellationReason = &cancellationReason.String
	}

	return &reservation, nil
}

// scanReservations сканирует результаты запроса в слайс бронирований
func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %v", ErrScanRow, err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %v", ErrScanRow, err)
	}

	return reservations, nil
}
