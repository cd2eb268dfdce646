package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(startHour, startMin, endHour, endMin int) LeaseWindow {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return LeaseWindow{
		ProviderID:      7,
		StaffID:         3,
		Date:            day,
		OccupiedStartAt: day.Add(time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute),
		OccupiedEndAt:   day.Add(time.Duration(endHour)*time.Hour + time.Duration(endMin)*time.Minute),
	}
}

func TestLeaseWindow_Buckets(t *testing.T) {
	t.Run("aligned window", func(t *testing.T) {
		// 10:00-10:30 -> buckets 120..125
		got := window(10, 0, 10, 30).Buckets()
		assert.Equal(t, []int{120, 121, 122, 123, 124, 125}, got)
	})

	t.Run("end on bucket boundary does not claim the next bucket", func(t *testing.T) {
		a := window(10, 0, 10, 30).Buckets()
		b := window(10, 30, 11, 0).Buckets()
		// adjacent windows must not share a bucket
		assert.Equal(t, a[len(a)-1]+1, b[0])
	})

	t.Run("unaligned end rounds up", func(t *testing.T) {
		// 10:00-10:07 covers buckets 120 and 121
		got := window(10, 0, 10, 7).Buckets()
		assert.Equal(t, []int{120, 121}, got)
	})

	t.Run("empty window", func(t *testing.T) {
		assert.Nil(t, window(10, 0, 10, 0).Buckets())
	})
}

func TestLeaseWindow_LeaseIDs(t *testing.T) {
	w := window(10, 0, 10, 10)

	ids := w.LeaseIDs(0)
	require.Len(t, ids, 2)
	assert.Equal(t, "p7:s3:2026-03-10:seat0:b120", ids[0])
	assert.Equal(t, "p7:s3:2026-03-10:seat0:b121", ids[1])

	// different seat derives disjoint ids
	other := w.LeaseIDs(1)
	for _, id := range other {
		assert.NotContains(t, ids, id)
	}
}

func TestLeaseWindow_OverlappingWindowsCollide(t *testing.T) {
	a := window(10, 0, 10, 30).LeaseIDs(0)
	b := window(10, 25, 10, 55).LeaseIDs(0)

	shared := 0
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if set[id] {
			shared++
		}
	}
	// at least one common id is what turns the insert into mutual exclusion
	assert.Greater(t, shared, 0)
}

func TestLeaseWindow_Leases(t *testing.T) {
	w := window(9, 0, 9, 15)
	leases := w.Leases(2, 101, 55)

	require.Len(t, leases, 3)
	for i, l := range leases {
		assert.Equal(t, LeaseID(7, 3, "2026-03-10", 2, 108+i), l.ID)
		assert.Equal(t, int64(7), l.ProviderID)
		assert.Equal(t, int64(3), l.StaffID)
		assert.Equal(t, "2026-03-10", l.DateKey)
		assert.Equal(t, 2, l.SeatIndex)
		assert.Equal(t, int64(101), l.BookingID)
		assert.Equal(t, int64(55), l.CustomerID)
	}
}
