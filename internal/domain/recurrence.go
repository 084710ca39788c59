package domain

import "fmt"

// RecurrenceKind how a submission repeats.
type RecurrenceKind string

const (
	RecurrenceOnce   RecurrenceKind = "once"
	RecurrenceWeekly RecurrenceKind = "weekly"
)

// Recurrence is the recurrence descriptor of a create request:
// Once(window) has a nil Count, Weekly(window, n) carries n.
type Recurrence struct {
	Kind  RecurrenceKind
	Count *int
}

// Once recurrence descriptor for a single occurrence.
func Once() Recurrence {
	return Recurrence{Kind: RecurrenceOnce}
}

// Weekly recurrence descriptor for count occurrences seven days apart.
func Weekly(count int) Recurrence {
	return Recurrence{Kind: RecurrenceWeekly, Count: &count}
}

// Validate checks the descriptor without expanding it.
func (r Recurrence) Validate() error {
	switch r.Kind {
	case RecurrenceOnce:
		if r.Count != nil {
			return fmt.Errorf("%w: count is not allowed for %q", ErrInvalidRecurrence, r.Kind)
		}
	case RecurrenceWeekly:
		if r.Count == nil || *r.Count < 1 {
			return fmt.Errorf("%w: count must be a positive integer for %q", ErrInvalidRecurrence, r.Kind)
		}
		if *r.Count > MaxWeeklyOccurrences {
			return fmt.Errorf("%w: count must not exceed %d", ErrInvalidRecurrence, MaxWeeklyOccurrences)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRecurrence, r.Kind)
	}
	return nil
}

// Occurrences number of windows the descriptor expands to.
func (r Recurrence) Occurrences() int {
	if r.Kind == RecurrenceWeekly && r.Count != nil {
		return *r.Count
	}
	return 1
}

// ExpandOccurrences turns one window and a recurrence descriptor into the
// ordered list of concrete windows. The first element equals the input window,
// every next one is seven days after the previous. Never returns an empty slice
// without an error.
func ExpandOccurrences(window TimeWindow, recurrence Recurrence) ([]TimeWindow, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if err := recurrence.Validate(); err != nil {
		return nil, err
	}

	window.Date = DateOnly(window.Date)

	n := recurrence.Occurrences()
	windows := make([]TimeWindow, n)
	for i := 0; i < n; i++ {
		windows[i] = window.ShiftDays(i * DaysPerWeek)
	}
	return windows, nil
}
