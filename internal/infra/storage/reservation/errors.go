package reservation

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = fmt.Errorf("reservation.repository: %w", domain.ErrNotFound)

	// ErrSlotTaken возвращается, когда база отвергла запись из-за пересечения
	// (exclusion constraint или конфликт сериализуемой транзакции)
	ErrSlotTaken = fmt.Errorf("reservation.repository: %w", domain.ErrSlotConflict)

	// ErrTransaction возвращается, когда операция требует активной транзакции
	ErrTransaction = fmt.Errorf("reservation.repository: transaction required: %w", domain.ErrStorage)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = fmt.Errorf("reservation.repository: failed to build query: %w", domain.ErrStorage)

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = fmt.Errorf("reservation.repository: failed to execute query: %w", domain.ErrStorage)

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = fmt.Errorf("reservation.repository: failed to scan row: %w", domain.ErrStorage)
)

// Коды ошибок PostgreSQL, которые означают занятый слот
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgExclusionViolation   = "23P01"
	pgUniqueViolation      = "23505"
)

// IsSlotConflict сообщает, что ошибка (в том числе ошибка commit транзакции)
// вызвана конкурентной записью в тот же слот
func IsSlotConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrSlotConflict) {
		return true
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case pgSerializationFailure, pgDeadlockDetected, pgExclusionViolation, pgUniqueViolation:
		return true
	default:
		return false
	}
}

// wrapExecError превращает ошибку драйвера в ошибку репозитория
func wrapExecError(op string, err error) error {
	if IsSlotConflict(err) {
		return fmt.Errorf("%w: %s: %v", ErrSlotTaken, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrExecQuery, op, err)
}
