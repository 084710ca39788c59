package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-VenueBooking/pkg/types"
)

// TimeWindow a single day's half-open time window [Start, End).
type TimeWindow struct {
	Date  time.Time // calendar date, normalized to UTC midnight
	Start types.TimeString
	End   types.TimeString
}

// NewTimeWindow parses start/end as HH:MM and validates start < end.
func NewTimeWindow(date time.Time, start, end string) (TimeWindow, error) {
	startTime, err := types.NewTimeStringFromString(start)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: start: %v", ErrInvalidWindow, err)
	}
	endTime, err := types.NewTimeStringFromString(end)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: end: %v", ErrInvalidWindow, err)
	}

	w := TimeWindow{Date: DateOnly(date), Start: startTime, End: endTime}
	if err := w.Validate(); err != nil {
		return TimeWindow{}, err
	}
	return w, nil
}

// Validate checks formats and the start < end invariant.
func (w TimeWindow) Validate() error {
	if w.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidWindow)
	}
	if err := w.Start.Validate(); err != nil {
		return fmt.Errorf("%w: start: %v", ErrInvalidWindow, err)
	}
	if err := w.End.Validate(); err != nil {
		return fmt.Errorf("%w: end: %v", ErrInvalidWindow, err)
	}
	if !w.Start.IsBefore(w.End) {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

// Overlaps reports whether two windows share at least one minute.
// Windows that only touch (a.End == b.Start) do not overlap, and windows on
// different dates never overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	if !SameDate(w.Date, other.Date) {
		return false
	}
	return w.Start.IsBefore(other.End) && other.Start.IsBefore(w.End)
}

// Within reports whether the window fits into [open, close].
func (w TimeWindow) Within(open, close types.TimeString) bool {
	return !w.Start.IsBefore(open) && !w.End.IsAfter(close)
}

// DurationMinutes length of the window.
func (w TimeWindow) DurationMinutes() int {
	return w.End.Minutes() - w.Start.Minutes()
}

// ShiftDays returns the same time-of-day window n days later.
func (w TimeWindow) ShiftDays(n int) TimeWindow {
	return TimeWindow{Date: w.Date.AddDate(0, 0, n), Start: w.Start, End: w.End}
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s %s-%s", w.Date.Format(DateFormat), w.Start, w.End)
}

// DateOnly drops the time part and location, keeping the calendar date.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate compares calendar dates.
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, s)
	}
	return t, nil
}
