package decide_reservation

import (
	"github.com/m04kA/SMC-VenueBooking/internal/service/reservations/models"
)

// DecideReservationRequest HTTP request model
type DecideReservationRequest struct {
	Decision string  `json:"decision"` // "approve" | "decline"
	Reason   *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *DecideReservationRequest) ToServiceRequest(userID int64) *models.DecideRequest {
	reason := ""
	if r.Reason != nil {
		reason = *r.Reason
	}

	return &models.DecideRequest{
		UserID:   userID,
		Decision: r.Decision,
		Reason:   reason,
	}
}
