package create_reservation

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	"github.com/m04kA/SMC-VenueBooking/internal/integrations/venuecatalog"
)

// validateRequest валидирует входные данные запроса и возвращает окно первого вхождения
func validateRequest(req *Request) (domain.TimeWindow, error) {
	if req.RequesterID <= 0 {
		return domain.TimeWindow{}, fmt.Errorf("%w: requesterID must be positive", ErrInvalidInput)
	}

	if req.VenueID <= 0 {
		return domain.TimeWindow{}, fmt.Errorf("%w: venueID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return domain.TimeWindow{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := domain.ValidatePurpose(req.Purpose); err != nil {
		return domain.TimeWindow{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	window, err := domain.NewTimeWindow(req.Date, req.StartTime.String(), req.EndTime.String())
	if err != nil {
		return domain.TimeWindow{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return window, nil
}

// validateVenue проверяет, что площадка принимает бронирования на это окно
func validateVenue(venue *venuecatalog.Venue, window domain.TimeWindow) error {
	if !venue.IsActive || !venue.HasValidHours() {
		return ErrVenueInactive
	}

	// Все вхождения имеют одинаковое время, поэтому достаточно проверить первое
	if !window.Within(venue.OpenTime, venue.CloseTime) {
		return fmt.Errorf("%w: %s-%s is outside %s-%s",
			ErrOutsideOperatingHours, window.Start, window.End, venue.OpenTime, venue.CloseTime)
	}

	return nil
}

// validateDates проверяет первое и последнее вхождение относительно "сегодня"
func validateDates(windows []domain.TimeWindow, now time.Time, advanceBookingDays int) error {
	today := domain.DateOnly(now)

	first := windows[0].Date
	if first.Before(today) {
		return fmt.Errorf("%w: %s is before %s", ErrPastDate, first.Format(domain.DateFormat), today.Format(domain.DateFormat))
	}

	// Если advanceBookingDays = 0, нет ограничений на дату
	if advanceBookingDays == 0 {
		return nil
	}

	maxDate := today.AddDate(0, 0, advanceBookingDays)
	last := windows[len(windows)-1].Date
	if last.After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}
