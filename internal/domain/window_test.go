package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBooking/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustWindow(t *testing.T, d time.Time, start, end string) TimeWindow {
	t.Helper()
	w, err := NewTimeWindow(d, start, end)
	require.NoError(t, err)
	return w
}

func mustTime(t *testing.T, minutes int) types.TimeString {
	t.Helper()
	ts, err := types.NewTimeStringFromMinutes(minutes)
	require.NoError(t, err)
	return ts
}

func TestNewTimeWindow(t *testing.T) {
	d := date(2024, time.June, 10)

	tests := []struct {
		name  string
		start string
		end   string
		errIs error
	}{
		{name: "valid", start: "10:00", end: "12:00"},
		{name: "one minute", start: "23:58", end: "23:59"},
		{name: "start equals end", start: "10:00", end: "10:00", errIs: ErrInvalidWindow},
		{name: "start after end", start: "12:00", end: "10:00", errIs: ErrInvalidWindow},
		{name: "bad start format", start: "9:00", end: "10:00", errIs: ErrInvalidWindow},
		{name: "end out of range", start: "10:00", end: "24:00", errIs: ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewTimeWindow(d, tt.start, tt.end)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, w.Start.String())
			assert.Equal(t, tt.end, w.End.String())
		})
	}
}

func TestNewTimeWindow_NormalizesDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	w := mustWindow(t, time.Date(2024, time.June, 10, 22, 30, 0, 0, loc), "10:00", "11:00")

	assert.Equal(t, date(2024, time.June, 10), w.Date)
}

func TestTimeWindow_Overlaps(t *testing.T) {
	d := date(2024, time.June, 10)
	existing := mustWindow(t, d, "10:00", "12:00")

	tests := []struct {
		name      string
		candidate TimeWindow
		want      bool
	}{
		{name: "same window", candidate: existing, want: true},
		{name: "starts inside", candidate: mustWindow(t, d, "11:00", "13:00"), want: true},
		{name: "ends inside", candidate: mustWindow(t, d, "09:00", "10:30"), want: true},
		{name: "contains", candidate: mustWindow(t, d, "09:00", "13:00"), want: true},
		{name: "contained", candidate: mustWindow(t, d, "10:30", "11:00"), want: true},
		{name: "back to back after", candidate: mustWindow(t, d, "12:00", "13:00"), want: false},
		{name: "back to back before", candidate: mustWindow(t, d, "08:00", "10:00"), want: false},
		{name: "disjoint", candidate: mustWindow(t, d, "14:00", "15:00"), want: false},
		{name: "other date", candidate: mustWindow(t, d.AddDate(0, 0, 1), "10:00", "12:00"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, existing.Overlaps(tt.candidate))
			assert.Equal(t, tt.want, tt.candidate.Overlaps(existing), "overlap must be symmetric")
		})
	}
}

func TestTimeWindow_OverlapsItself(t *testing.T) {
	d := date(2024, time.June, 10)
	for start := 0; start < 24*60-1; start += 37 {
		for length := 1; start+length <= 24*60-1; length += 53 {
			w := TimeWindow{Date: d}
			w.Start = mustTime(t, start)
			w.End = mustTime(t, start+length)
			require.NoError(t, w.Validate())
			assert.True(t, w.Overlaps(w), w.String())
		}
	}
}

func TestTimeWindow_Within(t *testing.T) {
	d := date(2024, time.June, 10)

	assert.True(t, mustWindow(t, d, "08:00", "22:00").Within("08:00", "22:00"))
	assert.True(t, mustWindow(t, d, "09:00", "10:00").Within("08:00", "22:00"))
	assert.False(t, mustWindow(t, d, "07:59", "09:00").Within("08:00", "22:00"))
	assert.False(t, mustWindow(t, d, "21:00", "22:01").Within("08:00", "22:00"))
}

func TestTimeWindow_DurationAndString(t *testing.T) {
	w := mustWindow(t, date(2024, time.June, 10), "09:15", "10:45")

	assert.Equal(t, 90, w.DurationMinutes())
	assert.Equal(t, "2024-06-10 09:15-10:45", w.String())
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-06-03")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.June, 3), got)

	_, err = ParseDate("03.06.2024")
	assert.ErrorIs(t, err, ErrValidation)
}
