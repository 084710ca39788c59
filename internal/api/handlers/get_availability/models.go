package get_availability

import (
	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	getAvailability "github.com/m04kA/SMC-VenueBooking/internal/usecase/get_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	VenueID int64         `json:"venueId"`
	From    string        `json:"from"`
	To      string        `json:"to"`
	Days    []DayResponse `json:"days"`
}

type DayResponse struct {
	Date     string           `json:"date"`
	Occupied []WindowResponse `json:"occupied"`
}

type WindowResponse struct {
	ReservationID int64  `json:"reservationId"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	out := &AvailabilityResponse{
		VenueID: resp.VenueID,
		From:    resp.From.Format(domain.DateFormat),
		To:      resp.To.Format(domain.DateFormat),
		Days:    make([]DayResponse, 0, len(resp.Days)),
	}
	for _, d := range resp.Days {
		day := DayResponse{
			Date:     d.Date.Format(domain.DateFormat),
			Occupied: make([]WindowResponse, 0, len(d.Windows)),
		}
		for _, w := range d.Windows {
			day.Occupied = append(day.Occupied, WindowResponse{
				ReservationID: w.ReservationID,
				StartTime:     w.StartTime.String(),
				EndTime:       w.EndTime.String(),
			})
		}
		out.Days = append(out.Days, day)
	}
	return out
}
