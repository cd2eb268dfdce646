package notifyservice

import "time"

// Типы событий уведомлений
const (
	EventBookingCreated     = "booking.created"
	EventBookingConfirmed   = "booking.confirmed"
	EventBookingDeclined    = "booking.declined"
	EventBookingCancelled   = "booking.cancelled"
	EventBookingCompleted   = "booking.completed"
	EventBookingNoShow      = "booking.no_show"
	EventProposalCreated    = "booking.proposal_created"
	EventProposalAccepted   = "booking.proposal_accepted"
	EventProposalDeclined   = "booking.proposal_declined"
	EventRescheduleRequest  = "booking.reschedule_requested"
	EventCheckInRequested   = "booking.check_in_requested"
	EventCheckInConfirmed   = "booking.check_in_confirmed"
	EventCheckInRejected    = "booking.check_in_rejected"
	EventReminderUpcoming   = "booking.reminder"
)

// Event событие для отправки в NotifyService.
// EventID уникален на отправку: получатель дедуплицирует повторы по нему.
type Event struct {
	EventID    string                 `json:"event_id"`
	Type       string                 `json:"type"`
	BookingID  int64                  `json:"booking_id"`
	ProviderID int64                  `json:"provider_id"`
	CustomerID int64                  `json:"customer_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
