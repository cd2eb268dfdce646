package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
)

func TestComplete(t *testing.T) {
	b := settledConfirmedBooking()
	b.Status = domain.StatusCheckedIn
	b.ReferralStatus = domain.ReferralPending
	e := newEnv(b)

	resp, err := e.svc.Complete(context.Background(), 10, 77)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	assert.True(t, e.repo.readInTx)
	assert.True(t, e.repo.updateInTx)

	// лизы удаляются по id бронирования, а не по набору lock_ids
	assert.Equal(t, []int64{10}, e.leases.releasedBookings)

	updated := e.repo.updated
	require.NotNil(t, updated)
	assert.Empty(t, updated.LockIDs)
	assert.Equal(t, domain.ReferralConfirmed, updated.ReferralStatus)

	require.Len(t, e.notify.events, 1)
	assert.Equal(t, notifyservice.EventBookingCompleted, e.notify.events[0].Type)
}

func TestComplete_RequiresCheckIn(t *testing.T) {
	e := newEnv(settledConfirmedBooking()) // confirmed, без чек-ина

	_, err := e.svc.Complete(context.Background(), 10, 77)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, e.leases.releasedBookings)
}

func TestNoShow(t *testing.T) {
	b := settledConfirmedBooking()
	b.ReferralStatus = domain.ReferralPending
	e := newEnv(b)
	// начало 14:00, льготный период 20 минут
	e.svc.timeProvider = stubTime{t: time.Date(2026, 3, 10, 14, 25, 0, 0, time.UTC)}

	resp, err := e.svc.NoShow(context.Background(), 10, 77)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusNoShow), resp.Status)
	assert.Equal(t, []int64{10}, e.leases.releasedBookings)
	assert.Equal(t, domain.ReferralVoided, e.repo.updated.ReferralStatus)

	require.Len(t, e.notify.events, 1)
	assert.Equal(t, notifyservice.EventBookingNoShow, e.notify.events[0].Type)
}

func TestNoShow_TooEarly(t *testing.T) {
	e := newEnv(settledConfirmedBooking())
	e.svc.timeProvider = stubTime{t: time.Date(2026, 3, 10, 14, 10, 0, 0, time.UTC)}

	_, err := e.svc.NoShow(context.Background(), 10, 77)
	assert.ErrorIs(t, err, ErrTooEarlyNoShow)
	assert.Empty(t, e.leases.releasedBookings)
	assert.Nil(t, e.repo.updated)
}
