package respond_proposal

import "time"

// RespondProposalRequest HTTP request model
type RespondProposalRequest struct {
	Action string `json:"action"` // "accept" | "decline"
}

// RespondProposalResponse HTTP response model
type RespondProposalResponse struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
