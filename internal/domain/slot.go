package domain

import "time"

// AvailableSlot represents a bookable time slot with remaining capacity.
type AvailableSlot struct {
	Key             string // start time key, "HH:MM"
	Label           string // human label, "09:00 - 09:30"
	StartAt         time.Time
	EndAt           time.Time
	DurationMinutes int
	AvailableSeats  int
	TotalSeats      int
}

// IsFull returns true if the slot has no available seats.
func (s *AvailableSlot) IsFull() bool {
	return s.AvailableSeats <= 0
}

// IsPartiallyAvailable returns true if the slot has some but not all seats available.
func (s *AvailableSlot) IsPartiallyAvailable() bool {
	return s.AvailableSeats > 0 && s.AvailableSeats < s.TotalSeats
}

// IsFullyAvailable returns true if all seats are available.
func (s *AvailableSlot) IsFullyAvailable() bool {
	return s.AvailableSeats == s.TotalSeats
}

// OccupancyRate returns the occupancy rate as a percentage (0-100).
func (s *AvailableSlot) OccupancyRate() float64 {
	if s.TotalSeats == 0 {
		return 0
	}
	occupied := s.TotalSeats - s.AvailableSeats
	return float64(occupied) / float64(s.TotalSeats) * 100
}
