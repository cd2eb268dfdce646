package domain

// Default configuration values
const (
	DefaultIntervalMinutes = 30
	DefaultCapacity        = 1
)

// AllowedIntervals is the closed set of slot grid steps a provider may pick.
var AllowedIntervals = []int{10, 15, 20, 30, 45, 60}

// Business validation constants
const (
	MinCapacity                 = 1
	MaxCapacity                 = 100
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxProposalNoteLength       = 500
	MaxBlockReasonLength        = 200
	MaxCustomerNameLength       = 120
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// TerminalStatuses список конечных статусов — из них нет переходов
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// ActiveStatuses список статусов, при которых бронирование удерживает места
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusRescheduleRequested,
	StatusCheckedIn,
}
