package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workday() DaySchedule {
	return DaySchedule{
		Open:   true,
		Ranges: []TimeRange{{StartMin: 9 * 60, EndMin: 18 * 60}},
	}
}

func grid(day time.Time) SlotGrid {
	return SlotGrid{
		Date:            day,
		Day:             workday(),
		IntervalMinutes: 30,
		DurationMinutes: 60,
		Capacity:        1,
		Now:             day.AddDate(0, 0, -1),
		LeadMinutes:     5,
	}
}

func slotKeys(slots []AvailableSlot) []string {
	keys := make([]string, 0, len(slots))
	for _, s := range slots {
		keys = append(keys, s.Key)
	}
	return keys
}

func TestEnumerateSlots_FullDay(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	slots := EnumerateSlots(grid(day))

	// 09:00 .. 17:00 every 30 minutes: the last one-hour visit ends at 18:00
	require.Len(t, slots, 17)
	assert.Equal(t, "09:00", slots[0].Key)
	assert.Equal(t, "17:00", slots[16].Key)

	first := slots[0]
	assert.Equal(t, "09:00 - 10:00", first.Label)
	assert.Equal(t, day.Add(9*time.Hour), first.StartAt)
	assert.Equal(t, day.Add(10*time.Hour), first.EndAt)
	assert.Equal(t, 60, first.DurationMinutes)
	assert.Equal(t, 1, first.AvailableSeats)
	assert.Equal(t, 1, first.TotalSeats)
}

func TestEnumerateSlots_ClosedDay(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	g := grid(day)
	g.Day = DaySchedule{Open: false}

	assert.Empty(t, EnumerateSlots(g))
}

func TestEnumerateSlots_PastDay(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	g := grid(day)
	g.Now = day.AddDate(0, 0, 2)

	assert.Empty(t, EnumerateSlots(g))
}

func TestEnumerateSlots_SameDayLead(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	g := grid(day)
	// 10:05 rounded up to the interval plus the 5-minute lead => first slot 11:00
	g.Now = day.Add(10*time.Hour + 5*time.Minute)

	slots := EnumerateSlots(g)
	require.NotEmpty(t, slots)
	assert.Equal(t, "11:00", slots[0].Key)
}

func TestEnumerateSlots_BlockRemovesOverlappingSlots(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	g := grid(day)
	g.Blocks = []BookingBlock{{
		ProviderID: 7,
		StartAt:    day.Add(12 * time.Hour),
		EndAt:      day.Add(13 * time.Hour),
	}}

	keys := slotKeys(EnumerateSlots(g))
	assert.NotContains(t, keys, "11:30")
	assert.NotContains(t, keys, "12:00")
	assert.NotContains(t, keys, "12:30")
	assert.Contains(t, keys, "11:00")
	assert.Contains(t, keys, "13:00")
}

func TestEnumerateSlots_AllDayBlock(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	g := grid(day)
	g.Blocks = []BookingBlock{{
		ProviderID: 7,
		StartAt:    day.Add(12 * time.Hour),
		EndAt:      day.Add(12 * time.Hour),
		AllDay:     true,
	}}

	assert.Empty(t, EnumerateSlots(g))
}

func TestEnumerateSlots_LeasedSeatRemovesSlot(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	g := grid(day)

	w := LeaseWindow{
		ProviderID:      7,
		StaffID:         0,
		Date:            day,
		OccupiedStartAt: day.Add(10 * time.Hour),
		OccupiedEndAt:   day.Add(11 * time.Hour),
	}
	g.Leases = w.Leases(0, 101, 55)

	keys := slotKeys(EnumerateSlots(g))
	assert.NotContains(t, keys, "10:00")
	assert.Contains(t, keys, "09:00")
	assert.Contains(t, keys, "11:00")
}

func TestEnumerateSlots_SecondSeatKeepsSlotOffered(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	g := grid(day)
	g.Capacity = 2

	w := LeaseWindow{
		ProviderID:      7,
		StaffID:         0,
		Date:            day,
		OccupiedStartAt: day.Add(10 * time.Hour),
		OccupiedEndAt:   day.Add(11 * time.Hour),
	}
	g.Leases = w.Leases(0, 101, 55)

	slots := EnumerateSlots(g)
	var at10 *AvailableSlot
	for i := range slots {
		if slots[i].Key == "10:00" {
			at10 = &slots[i]
			break
		}
	}
	require.NotNil(t, at10)
	assert.Equal(t, 1, at10.AvailableSeats)
	assert.Equal(t, 2, at10.TotalSeats)
}

func TestEnumerateSlots_BuffersMustFitOpenRange(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	g := grid(day)
	g.BufferBefore = 15
	g.BufferAfter = 15

	keys := slotKeys(EnumerateSlots(g))
	// 09:00 does not fit: the occupied window would start at 08:45
	assert.NotContains(t, keys, "09:00")
	assert.Contains(t, keys, "09:30")
	// 17:00 does not fit: the occupied window would end at 18:15
	assert.NotContains(t, keys, "17:00")
	assert.Contains(t, keys, "16:30")
}

func TestFindNextSlot(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	g := grid(day)

	t.Run("strictly after", func(t *testing.T) {
		next := FindNextSlot(g, day.Add(10*time.Hour+10*time.Minute))
		require.NotNil(t, next)
		assert.Equal(t, "10:30", next.Key)
	})

	t.Run("exact slot start is skipped", func(t *testing.T) {
		next := FindNextSlot(g, day.Add(10*time.Hour+30*time.Minute))
		require.NotNil(t, next)
		assert.Equal(t, "11:00", next.Key)
	})

	t.Run("nothing after the last slot", func(t *testing.T) {
		assert.Nil(t, FindNextSlot(g, day.Add(17*time.Hour)))
	})
}
