package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType what happened to a reservation.
type EventType string

const (
	EventCreated   EventType = "reservation.created"
	EventApproved  EventType = "reservation.approved"
	EventDeclined  EventType = "reservation.declined"
	EventCancelled EventType = "reservation.cancelled"
)

// LifecycleEvent is emitted after every successful create/approve/decline/cancel.
// Delivery is best effort: nobody acknowledges it back to the engine.
type LifecycleEvent struct {
	ID            uuid.UUID         `json:"id"`
	Type          EventType         `json:"type"`
	ReservationID int64             `json:"reservationId"`
	VenueID       int64             `json:"venueId"`
	SeriesID      *uuid.UUID        `json:"seriesId,omitempty"`
	Status        ReservationStatus `json:"status"`
	ActorID       int64             `json:"actorId"`
	Reason        *string           `json:"reason,omitempty"`
	OccurredAt    time.Time         `json:"occurredAt"`
}

// RoutingKey broker routing key of the event.
func (e LifecycleEvent) RoutingKey() string { return string(e.Type) }

// NewLifecycleEvent builds the event describing the current state of r.
func NewLifecycleEvent(r *Reservation, actorID int64, at time.Time) LifecycleEvent {
	e := LifecycleEvent{
		ID:            uuid.New(),
		Type:          eventTypeFor(r.Status),
		ReservationID: r.ID,
		VenueID:       r.VenueID,
		SeriesID:      r.SeriesID,
		Status:        r.Status,
		ActorID:       actorID,
		OccurredAt:    at,
	}

	switch r.Status {
	case StatusDeclined:
		e.Reason = r.DeclineReason
	case StatusCancelled:
		e.Reason = r.CancellationReason
	}
	return e
}

func eventTypeFor(status ReservationStatus) EventType {
	switch status {
	case StatusApproved:
		return EventApproved
	case StatusDeclined:
		return EventDeclined
	case StatusCancelled:
		return EventCancelled
	default:
		return EventCreated
	}
}
