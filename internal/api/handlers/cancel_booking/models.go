package cancel_booking

import "time"

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	ID                     int64     `json:"id"`
	Status                 string    `json:"status"`
	CancellationFeePercent float64   `json:"cancellationFeePercent"`
	CancellationFeeAmount  float64   `json:"cancellationFeeAmount"`
	CancelledAt            time.Time `json:"cancelledAt"`
}
