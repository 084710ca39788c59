package models

import (
	"errors"
	"strings"
	"time"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

var (
	// ErrInvalidDecision возвращается при неизвестном решении менеджера
	ErrInvalidDecision = errors.New("invalid decision")
)

// Decision решение менеджера по заявке
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDecline Decision = "decline"
)

// ParseDecision конвертирует строку в Decision с валидацией
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionApprove, DecisionDecline:
		return d, nil
	default:
		return "", ErrInvalidDecision
	}
}

// Request модели

// DecideRequest запрос на одобрение или отклонение заявки
type DecideRequest struct {
	UserID   int64  `json:"userId"`
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

// CancelRequest запрос на отмену бронирования
type CancelRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason,omitempty"`
}

// GetUserReservationsRequest запрос на получение бронирований пользователя
type GetUserReservationsRequest struct {
	UserID       int64   `json:"userId"`       // Кто запрашивает
	TargetUserID int64   `json:"targetUserId"` // Чьи бронирования
	Status       *string `json:"status,omitempty"`
}

// GetVenueReservationsRequest запрос на получение бронирований площадки
type GetVenueReservationsRequest struct {
	UserID    int64      `json:"userId"`
	VenueID   int64      `json:"venueId"`
	StartDate *time.Time `json:"startDate,omitempty"` // Начало периода (опционально)
	EndDate   *time.Time `json:"endDate,omitempty"`   // Конец периода (опционально)
	Status    *string    `json:"status,omitempty"`    // Фильтр по статусу (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetVenueReservationsRequest) ToDomainFilter() (domain.ReservationsFilter, error) {
	filter := domain.ReservationsFilter{
		VenueID:   &r.VenueID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}

	if r.Status != nil {
		status, err := domain.ParseReservationStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Statuses = []domain.ReservationStatus{status}
	}

	return filter, nil
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID          int64   `json:"id"`
	VenueID     int64   `json:"venueId"`
	RequesterID int64   `json:"requesterId"`
	ApproverID  *int64  `json:"approverId,omitempty"`
	SeriesID    *string `json:"seriesId,omitempty"`
	Date        string  `json:"date"`      // "2024-06-10"
	StartTime   string  `json:"startTime"` // "10:00"
	EndTime     string  `json:"endTime"`   // "12:00"
	Purpose     string  `json:"purpose"`
	Status      string  `json:"status"`

	DeclineReason      *string `json:"declineReason,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledBy        *int64  `json:"cancelledBy,omitempty"`

	CreatedAt       time.Time `json:"createdAt"`
	StatusChangedAt time.Time `json:"statusChangedAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:                 r.ID,
		VenueID:            r.VenueID,
		RequesterID:        r.RequesterID,
		ApproverID:         r.ApproverID,
		Date:               r.Date.Format(domain.DateFormat),
		StartTime:          r.StartTime.String(),
		EndTime:            r.EndTime.String(),
		Purpose:            r.Purpose,
		Status:             string(r.Status),
		DeclineReason:      r.DeclineReason,
		CancellationReason: r.CancellationReason,
		CancelledBy:        r.CancelledBy,
		CreatedAt:          r.CreatedAt,
		StatusChangedAt:    r.StatusChangedAt,
		UpdatedAt:          r.UpdatedAt,
	}

	if r.SeriesID != nil {
		series := r.SeriesID.String()
		resp.SeriesID = &series
	}

	return resp
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}

	for _, r := range reservations {
		if item := FromDomainReservation(r); item != nil {
			resp.Reservations = append(resp.Reservations, *item)
		}
	}

	return resp
}
