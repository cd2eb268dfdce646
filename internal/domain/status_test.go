package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus_AllowedTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  BookingStatus
		event Event
		actor Actor
		want  BookingStatus
	}{
		{"provider approves pending", StatusPending, EventApprove, ActorProvider, StatusConfirmed},
		{"provider rejects pending", StatusPending, EventReject, ActorProvider, StatusCancelled},
		{"provider proposes time on pending", StatusPending, EventProposeTime, ActorProvider, StatusRescheduleRequested},
		{"customer cancels pending", StatusPending, EventCancel, ActorCustomer, StatusCancelled},
		{"provider proposes time on confirmed", StatusConfirmed, EventProposeTime, ActorProvider, StatusRescheduleRequested},
		{"customer requests reschedule", StatusConfirmed, EventRequestReschedule, ActorCustomer, StatusRescheduleRequested},
		{"customer checks in", StatusConfirmed, EventConfirmCheckIn, ActorCustomer, StatusCheckedIn},
		{"customer cancels confirmed", StatusConfirmed, EventCancel, ActorCustomer, StatusCancelled},
		{"provider reports no-show", StatusConfirmed, EventReportNoShow, ActorProvider, StatusNoShow},
		{"provider rejects during reschedule", StatusRescheduleRequested, EventReject, ActorProvider, StatusCancelled},
		{"customer accepts proposal", StatusRescheduleRequested, EventAcceptProposal, ActorCustomer, StatusConfirmed},
		{"customer declines proposal", StatusRescheduleRequested, EventDeclineProposal, ActorCustomer, StatusCancelled},
		{"provider approves reschedule", StatusRescheduleRequested, EventApproveReschedule, ActorProvider, StatusConfirmed},
		{"provider declines reschedule", StatusRescheduleRequested, EventDeclineReschedule, ActorProvider, StatusConfirmed},
		{"provider completes visit", StatusCheckedIn, EventComplete, ActorProvider, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextStatus(tt.from, tt.event, tt.actor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextStatus_TerminalStatusesHaveNoTransitions(t *testing.T) {
	terminal := []BookingStatus{StatusCompleted, StatusCancelled, StatusNoShow}
	events := []Event{
		EventApprove, EventReject, EventProposeTime, EventAcceptProposal,
		EventDeclineProposal, EventRequestReschedule, EventApproveReschedule,
		EventDeclineReschedule, EventConfirmCheckIn, EventComplete,
		EventCancel, EventReportNoShow,
	}

	for _, status := range terminal {
		assert.True(t, status.IsTerminal())
		for _, event := range events {
			for _, actor := range []Actor{ActorCustomer, ActorProvider} {
				_, err := NextStatus(status, event, actor)
				assert.ErrorIs(t, err, ErrInvalidTransition,
					"status=%s event=%s actor=%s", status, event, actor)
			}
		}
	}
}

func TestNextStatus_WrongActor(t *testing.T) {
	tests := []struct {
		from  BookingStatus
		event Event
		actor Actor
	}{
		{StatusPending, EventApprove, ActorCustomer},
		{StatusPending, EventCancel, ActorProvider},
		{StatusConfirmed, EventConfirmCheckIn, ActorProvider},
		{StatusConfirmed, EventReportNoShow, ActorCustomer},
		{StatusRescheduleRequested, EventAcceptProposal, ActorProvider},
		{StatusRescheduleRequested, EventApproveReschedule, ActorCustomer},
		{StatusCheckedIn, EventComplete, ActorCustomer},
	}

	for _, tt := range tests {
		_, err := NextStatus(tt.from, tt.event, tt.actor)
		assert.ErrorIs(t, err, ErrWrongActor, "status=%s event=%s actor=%s", tt.from, tt.event, tt.actor)
	}
}

func TestNextStatus_UnknownPair(t *testing.T) {
	_, err := NextStatus(StatusConfirmed, EventApprove, ActorProvider)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = NextStatus(StatusCheckedIn, EventCancel, ActorCustomer)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBookingStatus_IsValid(t *testing.T) {
	valid := []BookingStatus{
		StatusPending, StatusConfirmed, StatusRescheduleRequested,
		StatusCheckedIn, StatusCompleted, StatusCancelled, StatusNoShow,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "status=%s", s)
	}
	assert.False(t, BookingStatus("archived").IsValid())
	assert.False(t, BookingStatus("").IsValid())
}
