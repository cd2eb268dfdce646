package domain

import (
	"fmt"
	"time"
)

// BucketMinutes is the quantum of the seat lease grid. A booking's occupied
// window is split into 5-minute buckets; one lease row exists per
// (seat, bucket) pair it covers.
const BucketMinutes = 5

// SeatLease is an exclusive reservation of one seat for one time bucket.
// Lease existence is the sole source of truth for capacity consumption:
// a seat is free for a window iff none of the window's bucket leases exist.
type SeatLease struct {
	ID         string
	ProviderID int64
	StaffID    int64
	DateKey    string
	SeatIndex  int
	Bucket     int
	BookingID  int64
	CustomerID int64
	CreatedAt  time.Time
}

// LeaseWindow describes the occupied time span a booking needs to lease.
type LeaseWindow struct {
	ProviderID      int64
	StaffID         int64 // 0 = provider-wide pool
	Date            time.Time
	OccupiedStartAt time.Time
	OccupiedEndAt   time.Time
}

// DateKey returns the day partition key of the window.
func (w LeaseWindow) DateKey() string {
	return w.Date.Format(DateFormat)
}

// Buckets returns the day-relative 5-minute bucket indices covering
// [OccupiedStartAt, OccupiedEndAt). The end bucket is exclusive, so a
// window ending exactly on a bucket boundary does not claim the next bucket.
func (w LeaseWindow) Buckets() []int {
	midnight := time.Date(w.Date.Year(), w.Date.Month(), w.Date.Day(), 0, 0, 0, 0, w.OccupiedStartAt.Location())

	startMin := int(w.OccupiedStartAt.Sub(midnight).Minutes())
	endMin := int(w.OccupiedEndAt.Sub(midnight).Minutes())
	if endMin <= startMin {
		return nil
	}

	first := startMin / BucketMinutes
	last := (endMin + BucketMinutes - 1) / BucketMinutes // exclusive

	buckets := make([]int, 0, last-first)
	for b := first; b < last; b++ {
		buckets = append(buckets, b)
	}
	return buckets
}

// LeaseIDs derives the deterministic lease ids the window occupies for the
// given seat. Two concurrent bookings contending for the same seat and time
// necessarily derive at least one identical id, which is what makes the
// create-if-absent insert a mutual exclusion primitive.
func (w LeaseWindow) LeaseIDs(seatIndex int) []string {
	buckets := w.Buckets()
	ids := make([]string, 0, len(buckets))
	for _, b := range buckets {
		ids = append(ids, LeaseID(w.ProviderID, w.StaffID, w.DateKey(), seatIndex, b))
	}
	return ids
}

// Leases materializes the lease rows for the given seat and owning booking.
func (w LeaseWindow) Leases(seatIndex int, bookingID, customerID int64) []SeatLease {
	buckets := w.Buckets()
	leases := make([]SeatLease, 0, len(buckets))
	for _, b := range buckets {
		leases = append(leases, SeatLease{
			ID:         LeaseID(w.ProviderID, w.StaffID, w.DateKey(), seatIndex, b),
			ProviderID: w.ProviderID,
			StaffID:    w.StaffID,
			DateKey:    w.DateKey(),
			SeatIndex:  seatIndex,
			Bucket:     b,
			BookingID:  bookingID,
			CustomerID: customerID,
		})
	}
	return leases
}

// LeaseID builds the canonical lease key for (provider, staff, day, seat, bucket).
func LeaseID(providerID, staffID int64, dateKey string, seatIndex, bucket int) string {
	return fmt.Sprintf("p%d:s%d:%s:seat%d:b%d", providerID, staffID, dateKey, seatIndex, bucket)
}
