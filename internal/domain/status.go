package domain

import (
	"errors"
	"fmt"
)

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending             BookingStatus = "pending"
	StatusConfirmed           BookingStatus = "confirmed"
	StatusRescheduleRequested BookingStatus = "reschedule_requested"
	StatusCheckedIn           BookingStatus = "checked_in"
	StatusCompleted           BookingStatus = "completed"
	StatusCancelled           BookingStatus = "cancelled"
	StatusNoShow              BookingStatus = "no_show"
)

// Actor identifies which side of the booking performs a transition.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorProvider Actor = "provider"
)

// ProposalParty identifies who initiated a pending time proposal.
type ProposalParty string

const (
	ProposalByCompany  ProposalParty = "company"
	ProposalByCustomer ProposalParty = "customer"
)

// Event is a state machine input. Any (status, event, actor) triple not
// present in the transition table is rejected.
type Event string

const (
	EventApprove            Event = "approve"             // provider: pending -> confirmed
	EventReject             Event = "reject"              // provider: pending/reschedule_requested -> cancelled
	EventProposeTime        Event = "propose_time"        // provider: pending/confirmed -> reschedule_requested
	EventAcceptProposal     Event = "accept_proposal"     // customer: reschedule_requested -> confirmed
	EventDeclineProposal    Event = "decline_proposal"    // customer: reschedule_requested -> cancelled
	EventRequestReschedule  Event = "request_reschedule"  // customer: confirmed -> reschedule_requested
	EventApproveReschedule  Event = "approve_reschedule"  // provider: reschedule_requested -> confirmed
	EventDeclineReschedule  Event = "decline_reschedule"  // provider: reschedule_requested -> confirmed
	EventConfirmCheckIn     Event = "confirm_check_in"    // customer: confirmed -> checked_in
	EventComplete           Event = "complete"            // provider: checked_in -> completed
	EventCancel             Event = "cancel"              // customer: pending/confirmed -> cancelled
	EventReportNoShow       Event = "report_no_show"      // provider: confirmed -> no_show
)

var (
	// ErrInvalidTransition возвращается для пары (статус, событие) вне таблицы переходов
	ErrInvalidTransition = errors.New("domain: transition not permitted from current status")

	// ErrWrongActor возвращается, когда событие инициировано не той стороной
	ErrWrongActor = errors.New("domain: actor is not permitted to perform this transition")
)

type transition struct {
	to    BookingStatus
	actor Actor
}

// transitions is the closed transition table. Guards that depend on data
// beyond the status itself (settlement, proposal party, TTLs, grace periods)
// are enforced by the operations that fire the events.
var transitions = map[BookingStatus]map[Event]transition{
	StatusPending: {
		EventApprove:     {to: StatusConfirmed, actor: ActorProvider},
		EventReject:      {to: StatusCancelled, actor: ActorProvider},
		EventProposeTime: {to: StatusRescheduleRequested, actor: ActorProvider},
		EventCancel:      {to: StatusCancelled, actor: ActorCustomer},
	},
	StatusConfirmed: {
		EventProposeTime:       {to: StatusRescheduleRequested, actor: ActorProvider},
		EventRequestReschedule: {to: StatusRescheduleRequested, actor: ActorCustomer},
		EventConfirmCheckIn:    {to: StatusCheckedIn, actor: ActorCustomer},
		EventCancel:            {to: StatusCancelled, actor: ActorCustomer},
		EventReportNoShow:      {to: StatusNoShow, actor: ActorProvider},
	},
	StatusRescheduleRequested: {
		EventReject:            {to: StatusCancelled, actor: ActorProvider},
		EventAcceptProposal:    {to: StatusConfirmed, actor: ActorCustomer},
		EventDeclineProposal:   {to: StatusCancelled, actor: ActorCustomer},
		EventApproveReschedule: {to: StatusConfirmed, actor: ActorProvider},
		EventDeclineReschedule: {to: StatusConfirmed, actor: ActorProvider},
	},
	StatusCheckedIn: {
		EventComplete: {to: StatusCompleted, actor: ActorProvider},
	},
	// completed, cancelled, no_show are terminal: no outgoing transitions
}

// NextStatus resolves the target status for (from, event, actor).
// Returns ErrInvalidTransition for unknown pairs and ErrWrongActor when the
// transition exists but belongs to the other side.
func NextStatus(from BookingStatus, event Event, actor Actor) (BookingStatus, error) {
	byEvent, ok := transitions[from]
	if !ok {
		return "", fmt.Errorf("%w: status=%s event=%s", ErrInvalidTransition, from, event)
	}
	t, ok := byEvent[event]
	if !ok {
		return "", fmt.Errorf("%w: status=%s event=%s", ErrInvalidTransition, from, event)
	}
	if t.actor != actor {
		return "", fmt.Errorf("%w: status=%s event=%s actor=%s", ErrWrongActor, from, event, actor)
	}
	return t.to, nil
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// IsValid reports whether the value is one of the known statuses.
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRescheduleRequested,
		StatusCheckedIn, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}
