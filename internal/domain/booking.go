package domain

import (
	"time"
)

// ReferralStatus tracks the referral commission lifecycle for a booking
// that originated from a tagged promotional post.
type ReferralStatus string

const (
	ReferralNone      ReferralStatus = "none"
	ReferralPending   ReferralStatus = "pending"
	ReferralConfirmed ReferralStatus = "confirmed"
	ReferralVoided    ReferralStatus = "voided"
)

// Booking is the aggregate root of the engine. Timing fields carry both the
// service window [StartAt, EndAt) and the occupied window including the
// service's pre/post buffers; seat leases are derived from the occupied one.
type Booking struct {
	ID         int64
	ProviderID int64
	StaffID    *int64
	ServiceID  int64
	CustomerID int64

	CustomerName  string
	CustomerPhone string

	BookingDate     time.Time
	StartAt         time.Time
	EndAt           time.Time
	OccupiedStartAt time.Time
	OccupiedEndAt   time.Time

	Status         BookingStatus
	PaymentSettled bool

	// Proposal fields: populated while Status == StatusRescheduleRequested.
	ProposalBy              *ProposalParty
	ProposedStartAt         *time.Time
	ProposedEndAt           *time.Time
	ProposedOccupiedStartAt *time.Time
	ProposedOccupiedEndAt   *time.Time
	ProposalNote            *string
	CustomerRescheduleCount int

	// Check-in fields. The code is single-use and expires at use-time;
	// there is no background sweep.
	CheckInCode          *string
	CheckInCodeExpiresAt *time.Time
	CheckedInAt          *time.Time

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64

	CancellationFeePercent float64
	CancellationFeeAmount  float64

	ReferralPostID    *string
	ReferralCreatorID *int64
	ReferralPercent   float64
	ReferralAmount    float64
	ReferralStatus    ReferralStatus

	RemindAt24h   *time.Time
	RemindAt2h    *time.Time
	Remind24hSent bool
	Remind2hSent  bool

	// LockIDs is the exact set of seat lease ids held for the current
	// occupied window. Empty for terminal bookings.
	LockIDs []string

	Notes              *string
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still holds capacity.
func (b *Booking) IsActive() bool {
	return !b.Status.IsTerminal()
}

// CanBeCancelled returns true if the customer may still cancel the booking.
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// HasOpenProposal returns true if a time proposal awaits the other party.
func (b *Booking) HasOpenProposal() bool {
	return b.Status == StatusRescheduleRequested && b.ProposalBy != nil
}

// StaffKey returns the staff id used in lease keys; bookings without an
// assigned staff member share the provider-wide seat pool (key 0).
func (b *Booking) StaffKey() int64 {
	if b.StaffID == nil {
		return 0
	}
	return *b.StaffID
}

// Window returns the lease window for the booking's current occupied time.
func (b *Booking) Window() LeaseWindow {
	return LeaseWindow{
		ProviderID:      b.ProviderID,
		StaffID:         b.StaffKey(),
		Date:            b.BookingDate,
		OccupiedStartAt: b.OccupiedStartAt,
		OccupiedEndAt:   b.OccupiedEndAt,
	}
}

// ProposedWindow returns the lease window for the proposed time, or nil
// when no proposal is open.
func (b *Booking) ProposedWindow() *LeaseWindow {
	if b.ProposedStartAt == nil || b.ProposedOccupiedStartAt == nil || b.ProposedOccupiedEndAt == nil {
		return nil
	}
	return &LeaseWindow{
		ProviderID:      b.ProviderID,
		StaffID:         b.StaffKey(),
		Date:            dateOnly(*b.ProposedStartAt),
		OccupiedStartAt: *b.ProposedOccupiedStartAt,
		OccupiedEndAt:   *b.ProposedOccupiedEndAt,
	}
}

// ClearProposal drops all proposal fields after acceptance or decline.
func (b *Booking) ClearProposal() {
	b.ProposalBy = nil
	b.ProposedStartAt = nil
	b.ProposedEndAt = nil
	b.ProposedOccupiedStartAt = nil
	b.ProposedOccupiedEndAt = nil
	b.ProposalNote = nil
}

// BookingsFilter фильтр для выборки бронирований провайдера
type BookingsFilter struct {
	ProviderID      int64           // Обязательный параметр
	StaffID         *int64          // Фильтр по сотруднику (опционально)
	ServiceID       *int64          // Фильтр по услуге (опционально)
	StartDate       *time.Time      // Начало периода (опционально)
	EndDate         *time.Time      // Конец периода (опционально)
	Statuses        []BookingStatus // Фильтр по набору статусов (опционально)
	IncludeInactive bool            // Включать ли терминальные бронирования
	SettledOnly     bool            // Только оплаченные (для выборок на стороне провайдера)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
