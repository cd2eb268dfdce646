package respond_reschedule

import "time"

// RespondRescheduleRequest HTTP request model
type RespondRescheduleRequest struct {
	Action string `json:"action"` // "approve" | "decline"
}

// RespondRescheduleResponse HTTP response model
type RespondRescheduleResponse struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
