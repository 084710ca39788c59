package get_venue_reservations

import (
	"time"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	"github.com/m04kA/SMC-VenueBooking/internal/service/reservations/models"
)

// ToServiceRequest собирает запрос к сервису из query параметров
func ToServiceRequest(venueID, userID int64, startDateStr, endDateStr, statusStr string) (*models.GetVenueReservationsRequest, error) {
	req := &models.GetVenueReservationsRequest{
		UserID:  userID,
		VenueID: venueID,
	}

	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		d, err := domain.ParseDate(s)
		if err != nil {
			return nil, err
		}
		return &d, nil
	}

	var err error
	if req.StartDate, err = parse(startDateStr); err != nil {
		return nil, err
	}
	if req.EndDate, err = parse(endDateStr); err != nil {
		return nil, err
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	return req, nil
}
