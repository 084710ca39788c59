package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VenueBooking/pkg/types"
)

// ReservationStatus represents the approval status of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusApproved  ReservationStatus = "approved"
	StatusDeclined  ReservationStatus = "declined"
	StatusCancelled ReservationStatus = "cancelled"
)

// transitions allowed status changes. Declined and cancelled are terminal:
// re-review requires a new reservation.
var transitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:  {StatusApproved, StatusDeclined, StatusCancelled},
	StatusApproved: {StatusCancelled},
}

// ParseReservationStatus validates a status string
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch status := ReservationStatus(s); status {
	case StatusPending, StatusApproved, StatusDeclined, StatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown reservation status %q", ErrValidation, s)
	}
}

// Reservation represents a request to occupy a venue for a date/time window
type Reservation struct {
	ID          int64
	VenueID     int64
	RequesterID int64
	ApproverID  *int64
	SeriesID    *uuid.UUID // shared by all occurrences of one weekly submission

	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString

	Purpose string
	Status  ReservationStatus

	DeclineReason      *string
	CancellationReason *string
	CancelledBy        *int64

	CreatedAt       time.Time
	StatusChangedAt time.Time
	UpdatedAt       time.Time
}

// NewPendingReservation builds a reservation for one occurrence.
func NewPendingReservation(venueID, requesterID int64, window TimeWindow, purpose string, seriesID *uuid.UUID, now time.Time) *Reservation {
	return &Reservation{
		VenueID:         venueID,
		RequesterID:     requesterID,
		SeriesID:        seriesID,
		Date:            DateOnly(window.Date),
		StartTime:       window.Start,
		EndTime:         window.End,
		Purpose:         strings.TrimSpace(purpose),
		Status:          StatusPending,
		CreatedAt:       now,
		StatusChangedAt: now,
		UpdatedAt:       now,
	}
}

// Window returns the reservation's date/time window
func (r *Reservation) Window() TimeWindow {
	return TimeWindow{Date: r.Date, Start: r.StartTime, End: r.EndTime}
}

// IsSlotHolding returns true if the reservation counts toward conflict detection
func (r *Reservation) IsSlotHolding() bool {
	return r.Status == StatusApproved
}

// IsActive returns true if the reservation is not in a terminal status
func (r *Reservation) IsActive() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// IsTerminal returns true if no transition can leave the current status
func (r *Reservation) IsTerminal() bool {
	return !r.IsActive()
}

// CanTransitionTo returns true if the lifecycle allows moving to status
func (r *Reservation) CanTransitionTo(status ReservationStatus) bool {
	for _, next := range transitions[r.Status] {
		if next == status {
			return true
		}
	}
	return false
}

// Approve moves a pending reservation to approved
func (r *Reservation) Approve(approverID int64, at time.Time) error {
	if approverID <= 0 {
		return ErrActorRequired
	}
	if err := r.checkTransition(StatusApproved); err != nil {
		return err
	}

	r.Status = StatusApproved
	r.ApproverID = &approverID
	r.DeclineReason = nil
	r.touch(at)
	return nil
}

// Decline moves a pending reservation to declined; a reason is mandatory
func (r *Reservation) Decline(approverID int64, reason string, at time.Time) error {
	if approverID <= 0 {
		return ErrActorRequired
	}
	if err := r.checkTransition(StatusDeclined); err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrDeclineReasonRequired
	}
	if len(reason) > MaxDeclineReasonLength {
		return ErrReasonTooLong
	}

	r.Status = StatusDeclined
	r.ApproverID = &approverID
	r.DeclineReason = &reason
	r.touch(at)
	return nil
}

// Cancel withdraws a pending or approved reservation; the reason is optional
func (r *Reservation) Cancel(actorID int64, reason string, at time.Time) error {
	if actorID <= 0 {
		return ErrActorRequired
	}
	if err := r.checkTransition(StatusCancelled); err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	if len(reason) > MaxCancellationReasonLength {
		return ErrReasonTooLong
	}

	r.Status = StatusCancelled
	r.CancelledBy = &actorID
	if reason != "" {
		r.CancellationReason = &reason
	}
	r.touch(at)
	return nil
}

func (r *Reservation) checkTransition(to ReservationStatus) error {
	if !r.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}
	return nil
}

func (r *Reservation) touch(at time.Time) {
	r.StatusChangedAt = at
	r.UpdatedAt = at
}

// ValidatePurpose checks the free-text purpose of a request
func ValidatePurpose(purpose string) error {
	trimmed := strings.TrimSpace(purpose)
	if trimmed == "" {
		return ErrEmptyPurpose
	}
	if len(trimmed) > MaxPurposeLength {
		return ErrPurposeTooLong
	}
	return nil
}

// ReservationsFilter фильтр для выборки бронирований площадки
type ReservationsFilter struct {
	VenueID     *int64              // Фильтр по площадке (опционально)
	RequesterID *int64              // Фильтр по автору заявки (опционально)
	Dates       []time.Time         // Конкретные даты (опционально)
	StartDate   *time.Time          // Начало периода (опционально)
	EndDate     *time.Time          // Конец периода включительно (опционально)
	Statuses    []ReservationStatus // Фильтр по статусам (пусто = все)
	ExcludeIDs  []int64             // Исключить бронирования (например, саму себя при повторной проверке)
}
