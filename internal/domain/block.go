package domain

import "time"

// BookingBlock is a provider-declared blackout interval (maintenance,
// holidays). Blocks subtract from availability: any candidate window that
// intersects a block is not offered and not bookable.
type BookingBlock struct {
	ID         int64
	ProviderID int64
	StartAt    time.Time
	EndAt      time.Time
	AllDay     bool
	Reason     string
	CreatedAt  time.Time
}

// Overlaps reports whether the block intersects the half-open window
// [startAt, endAt). All-day blocks cover every window on their calendar day.
func (b BookingBlock) Overlaps(startAt, endAt time.Time) bool {
	blockStart := b.StartAt
	blockEnd := b.EndAt
	if b.AllDay {
		blockStart = time.Date(b.StartAt.Year(), b.StartAt.Month(), b.StartAt.Day(), 0, 0, 0, 0, b.StartAt.Location())
		blockEnd = blockStart.AddDate(0, 0, 1)
	}
	return blockStart.Before(endAt) && blockEnd.After(startAt)
}
