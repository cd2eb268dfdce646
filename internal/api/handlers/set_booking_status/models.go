package set_booking_status

import "time"

// SetBookingStatusRequest HTTP request model
type SetBookingStatusRequest struct {
	Action string  `json:"action"` // "approve" | "reject"
	Reason *string `json:"reason,omitempty"`
}

// SetBookingStatusResponse HTTP response model
type SetBookingStatusResponse struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}
