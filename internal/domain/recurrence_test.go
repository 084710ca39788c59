package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandOccurrences_Weekly(t *testing.T) {
	start := mustWindow(t, date(2024, time.June, 3), "09:00", "10:00")

	got, err := ExpandOccurrences(start, Weekly(3))
	require.NoError(t, err)

	want := []TimeWindow{
		mustWindow(t, date(2024, time.June, 3), "09:00", "10:00"),
		mustWindow(t, date(2024, time.June, 10), "09:00", "10:00"),
		mustWindow(t, date(2024, time.June, 17), "09:00", "10:00"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExpandOccurrences() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandOccurrences_Spacing(t *testing.T) {
	// crosses a month and a year boundary
	start := mustWindow(t, date(2024, time.November, 25), "18:30", "20:00")

	for _, n := range []int{1, 2, 7, MaxWeeklyOccurrences} {
		got, err := ExpandOccurrences(start, Weekly(n))
		require.NoError(t, err)
		require.Len(t, got, n)
		assert.Equal(t, start, got[0])

		for i := 1; i < len(got); i++ {
			assert.Equal(t, 7*24*time.Hour, got[i].Date.Sub(got[i-1].Date))
			assert.Equal(t, start.Start, got[i].Start)
			assert.Equal(t, start.End, got[i].End)
		}
	}
}

func TestExpandOccurrences_WeeklyOneEqualsOnce(t *testing.T) {
	w := mustWindow(t, date(2024, time.June, 3), "09:00", "10:00")

	once, err := ExpandOccurrences(w, Once())
	require.NoError(t, err)
	weekly, err := ExpandOccurrences(w, Weekly(1))
	require.NoError(t, err)

	assert.Equal(t, []TimeWindow{w}, once)
	assert.Empty(t, cmp.Diff(once, weekly))
}

func TestExpandOccurrences_Idempotent(t *testing.T) {
	w := mustWindow(t, date(2024, time.June, 3), "09:00", "10:00")

	first, err := ExpandOccurrences(w, Weekly(10))
	require.NoError(t, err)
	second, err := ExpandOccurrences(w, Weekly(10))
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second))
}

func TestExpandOccurrences_Errors(t *testing.T) {
	w := mustWindow(t, date(2024, time.June, 3), "09:00", "10:00")
	one := 1

	tests := []struct {
		name       string
		window     TimeWindow
		recurrence Recurrence
		errIs      error
	}{
		{name: "weekly zero", window: w, recurrence: Weekly(0), errIs: ErrInvalidRecurrence},
		{name: "weekly negative", window: w, recurrence: Weekly(-2), errIs: ErrInvalidRecurrence},
		{name: "weekly without count", window: w, recurrence: Recurrence{Kind: RecurrenceWeekly}, errIs: ErrInvalidRecurrence},
		{name: "weekly too many", window: w, recurrence: Weekly(MaxWeeklyOccurrences + 1), errIs: ErrInvalidRecurrence},
		{name: "once with count", window: w, recurrence: Recurrence{Kind: RecurrenceOnce, Count: &one}, errIs: ErrInvalidRecurrence},
		{name: "unknown kind", window: w, recurrence: Recurrence{Kind: "monthly"}, errIs: ErrInvalidRecurrence},
		{name: "invalid window", window: TimeWindow{Date: w.Date, Start: "10:00", End: "09:00"}, recurrence: Once(), errIs: ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandOccurrences(tt.window, tt.recurrence)
			require.ErrorIs(t, err, tt.errIs)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Nil(t, got)
		})
	}
}
