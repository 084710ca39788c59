package reservations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	"github.com/m04kA/SMC-VenueBooking/internal/integrations/venuecatalog"
	"github.com/m04kA/SMC-VenueBooking/internal/service/availability"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	LockVenue(ctx context.Context, venueID int64) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error)
	UpdateLifecycle(ctx context.Context, reservation *domain.Reservation) error
}

// AvailabilityChecker интерфейс проверки пересечений
type AvailabilityChecker interface {
	Check(ctx context.Context, venueID int64, windows []domain.TimeWindow, statuses []domain.ReservationStatus) ([]availability.Result, error)
}

// VenueCatalogClient интерфейс клиента каталога площадок
type VenueCatalogClient interface {
	GetVenue(ctx context.Context, venueID int64) (*venuecatalog.Venue, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher интерфейс публикации событий жизненного цикла
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.LifecycleEvent) error
}

// AvailabilityCache интерфейс сброса кэша занятости площадки
type AvailabilityCache interface {
	Invalidate(ctx context.Context, venueID int64) error
}

// Metrics интерфейс бизнес-метрик
type Metrics interface {
	Transition(status string)
	SlotConflict(stage string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
