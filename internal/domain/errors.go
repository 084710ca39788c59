package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Error classes. Every package-level sentinel in the service wraps one of them,
// so a caller can decide whether to fix input, pick another slot or give up.
var (
	ErrValidation        = errors.New("validation error")
	ErrSlotConflict      = errors.New("slot conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotFound          = errors.New("not found")
	ErrStorage           = errors.New("storage error")
)

var (
	ErrInvalidWindow         = fmt.Errorf("%w: invalid time window", ErrValidation)
	ErrInvalidRecurrence     = fmt.Errorf("%w: invalid recurrence", ErrValidation)
	ErrEmptyPurpose          = fmt.Errorf("%w: purpose is required", ErrValidation)
	ErrPurposeTooLong        = fmt.Errorf("%w: purpose is too long", ErrValidation)
	ErrActorRequired         = fmt.Errorf("%w: actor id is required", ErrValidation)
	ErrDeclineReasonRequired = fmt.Errorf("%w: decline reason is required", ErrValidation)
	ErrReasonTooLong         = fmt.Errorf("%w: reason is too long", ErrValidation)
)

// SlotConflictError describes why a candidate slot cannot be taken.
// errors.Is(err, ErrSlotConflict) holds for it.
type SlotConflictError struct {
	VenueID int64
	// Date of the first conflicting occurrence in request order.
	Date time.Time
	// BlockingIDs reservations that hold the slot. Empty when the conflict was
	// detected by the database (serialization failure or exclusion constraint).
	BlockingIDs []int64
}

func (e *SlotConflictError) Error() string {
	var b strings.Builder
	b.WriteString("slot conflict: venue ")
	b.WriteString(strconv.FormatInt(e.VenueID, 10))
	b.WriteString(" on ")
	b.WriteString(e.Date.Format(DateFormat))
	if len(e.BlockingIDs) > 0 {
		ids := make([]string, len(e.BlockingIDs))
		for i, id := range e.BlockingIDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		b.WriteString(" blocked by reservations [")
		b.WriteString(strings.Join(ids, ", "))
		b.WriteString("]")
	}
	return b.String()
}

func (e *SlotConflictError) Unwrap() error {
	return ErrSlotConflict
}
