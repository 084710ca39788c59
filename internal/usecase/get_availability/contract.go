package get_availability

import (
	"context"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	"github.com/m04kA/SMC-VenueBooking/internal/integrations/venuecatalog"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error)
}

// VenueCatalogClient интерфейс клиента каталога площадок
type VenueCatalogClient interface {
	GetVenue(ctx context.Context, venueID int64) (*venuecatalog.Venue, error)
}

// AvailabilityCache кэш ответов по занятости площадки.
// Ключ версионируется по площадке, поэтому запись сбрасывается при любом одобрении или отмене.
// Set получает версию, которую вернул Get, а не текущую.
type AvailabilityCache interface {
	Get(ctx context.Context, venueID int64, rangeKey string, dst any) (version int64, found bool, err error)
	Set(ctx context.Context, venueID, version int64, rangeKey string, value any) error
}

// Metrics интерфейс метрик кэша
type Metrics interface {
	AvailabilityCache(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
