package get_availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

// validateRequest нормализует период до дат и проверяет его границы.
// Возвращает количество дат в периоде.
func validateRequest(req *Request, maxDays int) (int, error) {
	if req.VenueID <= 0 {
		return 0, fmt.Errorf("%w: venue id must be positive", ErrInvalidInput)
	}
	if req.From.IsZero() || req.To.IsZero() {
		return 0, fmt.Errorf("%w: from and to are required", ErrInvalidInput)
	}

	req.From = domain.DateOnly(req.From)
	req.To = domain.DateOnly(req.To)

	if req.To.Before(req.From) {
		return 0, ErrInvalidRange
	}

	days := int(req.To.Sub(req.From)/(24*time.Hour)) + 1
	if maxDays > 0 && days > maxDays {
		return 0, fmt.Errorf("%w: %d days requested, at most %d allowed", ErrRangeTooLong, days, maxDays)
	}

	return days, nil
}
