package create_reservation

import (
	"github.com/m04kA/SMC-VenueBooking/internal/api/handlers"
	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	createReservation "github.com/m04kA/SMC-VenueBooking/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-VenueBooking/pkg/types"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	VenueID    int64              `json:"venueId"`
	Date       string             `json:"date"`      // "2024-06-10"
	StartTime  string             `json:"startTime"` // "10:00"
	EndTime    string             `json:"endTime"`   // "12:00"
	Purpose    string             `json:"purpose"`
	Recurrence *RecurrenceRequest `json:"recurrence,omitempty"` // нет = однократно
}

// RecurrenceRequest описание повторения
type RecurrenceRequest struct {
	Type  string `json:"type"`            // "once" | "weekly"
	Count *int   `json:"count,omitempty"` // только для weekly
}

// CreateReservationResponse HTTP response model
type CreateReservationResponse struct {
	SeriesID     *string               `json:"seriesId,omitempty"`
	Reservations []ReservationResponse `json:"reservations"`
}

type ReservationResponse struct {
	ID          int64  `json:"id"`
	VenueID     int64  `json:"venueId"`
	RequesterID int64  `json:"requesterId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Purpose     string `json:"purpose"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(requesterID int64) (*createReservation.Request, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	recurrence := domain.Once()
	if r.Recurrence != nil {
		recurrence = domain.Recurrence{Kind: domain.RecurrenceKind(r.Recurrence.Type), Count: r.Recurrence.Count}
	}

	return &createReservation.Request{
		RequesterID: requesterID,
		VenueID:     r.VenueID,
		Date:        date,
		StartTime:   types.TimeString(r.StartTime),
		EndTime:     types.TimeString(r.EndTime),
		Purpose:     r.Purpose,
		Recurrence:  recurrence,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *CreateReservationResponse {
	out := &CreateReservationResponse{
		Reservations: make([]ReservationResponse, 0, len(resp.Reservations)),
	}
	if resp.SeriesID != nil {
		id := resp.SeriesID.String()
		out.SeriesID = &id
	}
	for _, r := range resp.Reservations {
		out.Reservations = append(out.Reservations, ReservationResponse{
			ID:          r.ID,
			VenueID:     r.VenueID,
			RequesterID: r.RequesterID,
			Date:        r.Date.Format(domain.DateFormat),
			StartTime:   r.StartTime.String(),
			EndTime:     r.EndTime.String(),
			Purpose:     r.Purpose,
			Status:      r.Status,
			CreatedAt:   handlers.FormatTime(r.CreatedAt),
		})
	}
	return out
}
