package domain

// Business validation constants
const (
	MaxPurposeLength            = 500
	MaxDeclineReasonLength      = 500
	MaxCancellationReasonLength = 500
	MaxWeeklyOccurrences        = 52 // one year of weekly occurrences
	DaysPerWeek                 = 7
)

// Default configuration values
const (
	DefaultAdvanceBookingDays = 0 // 0 = unlimited
	DefaultMaxQueryDays       = 92
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// SlotHoldingStatuses statuses that occupy a slot for conflict detection
// and for the free/busy view.
var SlotHoldingStatuses = []ReservationStatus{
	StatusApproved,
}

// ActiveStatuses non-terminal statuses. A slot claimed by any of them is
// protected at commit time when pending requests block each other.
var ActiveStatuses = []ReservationStatus{
	StatusPending,
	StatusApproved,
}

// TerminalStatuses statuses without outgoing transitions.
var TerminalStatuses = []ReservationStatus{
	StatusDeclined,
	StatusCancelled,
}
