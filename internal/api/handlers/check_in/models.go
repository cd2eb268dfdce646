package check_in

// ConfirmCheckInRequest HTTP request model
type ConfirmCheckInRequest struct {
	Code string `json:"code"`
}

// RejectCheckInRequest HTTP request model
type RejectCheckInRequest struct {
	Reason string `json:"reason,omitempty"`
}
