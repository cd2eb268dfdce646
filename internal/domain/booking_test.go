package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proposalBooking() *Booking {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &Booking{
		ID:                      10,
		ProviderID:              7,
		BookingDate:             day,
		OccupiedStartAt:         day.Add(14 * time.Hour),
		OccupiedEndAt:           day.Add(15 * time.Hour),
		ProposedStartAt:         timePtr(day.Add(16 * time.Hour)),
		ProposedEndAt:           timePtr(day.Add(17 * time.Hour)),
		ProposedOccupiedStartAt: timePtr(day.Add(16 * time.Hour)),
		ProposedOccupiedEndAt:   timePtr(day.Add(17 * time.Hour)),
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestProposedWindow(t *testing.T) {
	b := proposalBooking()

	w := b.ProposedWindow()
	require.NotNil(t, w)
	assert.Equal(t, int64(7), w.ProviderID)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), w.Date)
	assert.Equal(t, *b.ProposedOccupiedStartAt, w.OccupiedStartAt)
	assert.Equal(t, *b.ProposedOccupiedEndAt, w.OccupiedEndAt)
}

func TestProposedWindow_PartialProposalIsNil(t *testing.T) {
	// each proposal field missing on its own must yield nil, not panic
	clear := []func(b *Booking){
		func(b *Booking) { b.ProposedStartAt = nil },
		func(b *Booking) { b.ProposedOccupiedStartAt = nil },
		func(b *Booking) { b.ProposedOccupiedEndAt = nil },
	}

	for _, drop := range clear {
		b := proposalBooking()
		drop(b)
		assert.Nil(t, b.ProposedWindow())
	}
}

func TestStaffKey(t *testing.T) {
	b := proposalBooking()
	assert.Equal(t, int64(0), b.StaffKey())

	staff := int64(3)
	b.StaffID = &staff
	assert.Equal(t, int64(3), b.StaffKey())
}
