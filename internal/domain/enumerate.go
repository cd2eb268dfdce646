package domain

import (
	"fmt"
	"time"
)

// SlotGrid is everything the slot enumeration needs for one provider, staff
// member and calendar day. Callers load settings, blocks and leases for the
// day; the walk itself is a pure computation and never mutates anything.
type SlotGrid struct {
	Date            time.Time // midnight of the target day, provider's location
	Day             DaySchedule
	IntervalMinutes int
	DurationMinutes int
	BufferBefore    int
	BufferAfter     int
	Capacity        int
	Blocks          []BookingBlock
	Leases          []SeatLease
	Now             time.Time
	LeadMinutes     int
}

// EnumerateSlots walks the day's open ranges at IntervalMinutes steps and
// returns the bookable slots ordered ascending by start time.
//
// A candidate start survives when its buffered window [occupiedStart,
// occupiedEnd) fits entirely inside some open range, overlaps no block, and
// at least one seat has spare capacity. For today, starts before
// now-rounded-up-to-the-next-interval plus the lead are never offered.
func EnumerateSlots(g SlotGrid) []AvailableSlot {
	if g.Capacity < MinCapacity || g.DurationMinutes <= 0 || !g.Day.Open {
		return []AvailableSlot{}
	}

	interval := NormalizeInterval(g.IntervalMinutes)
	midnight := time.Date(g.Date.Year(), g.Date.Month(), g.Date.Day(), 0, 0, 0, 0, g.Date.Location())

	minStart := 0
	if sameDay(g.Now, midnight) {
		nowMin := g.Now.Hour()*60 + g.Now.Minute()
		minStart = roundUpToInterval(nowMin, interval) + g.LeadMinutes
	} else if g.Now.After(midnight.AddDate(0, 0, 1)) {
		// whole day in the past
		return []AvailableSlot{}
	}

	leased := leasesBySeatBucket(g.Leases)

	slots := make([]AvailableSlot, 0)
	for _, r := range g.Day.Ranges {
		if !r.Valid() {
			continue
		}

		cursor := r.StartMin
		if minStart > cursor {
			cursor = roundUpToInterval(minStart, interval)
		}

		for ; cursor+g.DurationMinutes <= r.EndMin; cursor += interval {
			occStart := cursor - g.BufferBefore
			occEnd := cursor + g.DurationMinutes + g.BufferAfter

			if !fitsAnyRange(g.Day.Ranges, occStart, occEnd) {
				continue
			}

			startAt := midnight.Add(time.Duration(cursor) * time.Minute)
			endAt := midnight.Add(time.Duration(cursor+g.DurationMinutes) * time.Minute)
			occStartAt := midnight.Add(time.Duration(occStart) * time.Minute)
			occEndAt := midnight.Add(time.Duration(occEnd) * time.Minute)

			if overlapsAnyBlock(g.Blocks, occStartAt, occEndAt) {
				continue
			}

			available := g.Capacity - seatsFullyLeased(leased, g.Capacity, occStart, occEnd)
			if available <= 0 {
				continue
			}

			slots = append(slots, AvailableSlot{
				Key:             startAt.Format(TimeFormat),
				Label:           fmt.Sprintf("%s - %s", startAt.Format(TimeFormat), endAt.Format(TimeFormat)),
				StartAt:         startAt,
				EndAt:           endAt,
				DurationMinutes: g.DurationMinutes,
				AvailableSeats:  available,
				TotalSeats:      g.Capacity,
			})
		}
	}

	return slots
}

// FindNextSlot returns the first slot starting strictly after the given
// time, or nil when the day has none. Company-proposed and same-day
// reschedule flows search with this.
func FindNextSlot(g SlotGrid, after time.Time) *AvailableSlot {
	for _, slot := range EnumerateSlots(g) {
		if slot.StartAt.After(after) {
			s := slot
			return &s
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func roundUpToInterval(minute, interval int) int {
	if minute <= 0 {
		return 0
	}
	rem := minute % interval
	if rem == 0 {
		return minute
	}
	return minute + interval - rem
}

func fitsAnyRange(ranges []TimeRange, startMin, endMin int) bool {
	for _, r := range ranges {
		if r.ContainsWindow(startMin, endMin) {
			return true
		}
	}
	return false
}

func overlapsAnyBlock(blocks []BookingBlock, startAt, endAt time.Time) bool {
	for _, b := range blocks {
		if b.Overlaps(startAt, endAt) {
			return true
		}
	}
	return false
}

// leasesBySeatBucket indexes the day's leases as seat -> occupied buckets.
func leasesBySeatBucket(leases []SeatLease) map[int]map[int]bool {
	index := make(map[int]map[int]bool)
	for _, l := range leases {
		if index[l.SeatIndex] == nil {
			index[l.SeatIndex] = make(map[int]bool)
		}
		index[l.SeatIndex][l.Bucket] = true
	}
	return index
}

// seatsFullyLeased counts seats with every required bucket of the window
// already leased.
func seatsFullyLeased(leased map[int]map[int]bool, capacity, occStartMin, occEndMin int) int {
	firstBucket := occStartMin / BucketMinutes
	lastBucket := (occEndMin + BucketMinutes - 1) / BucketMinutes // exclusive

	count := 0
	for seat := 0; seat < capacity; seat++ {
		buckets := leased[seat]
		if len(buckets) == 0 {
			continue
		}
		full := true
		for b := firstBucket; b < lastBucket; b++ {
			if !buckets[b] {
				full = false
				break
			}
		}
		if full && lastBucket > firstBucket {
			count++
		}
	}
	return count
}
