package request_reschedule

import (
	"time"

	requestReschedule "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/request_reschedule"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/types"
)

// RequestRescheduleRequest HTTP request model.
// Перенос возможен только в рамках дня бронирования, поэтому дата не передаётся.
type RequestRescheduleRequest struct {
	StartTime string  `json:"startTime"` // "10:00"
	Note      *string `json:"note,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RequestRescheduleRequest) ToUseCaseRequest(bookingID, userID int64) (*requestReschedule.Request, error) {
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &requestReschedule.Request{
		BookingID: bookingID,
		UserID:    userID,
		StartTime: startTime,
		Note:      r.Note,
	}, nil
}

// RequestRescheduleResponse HTTP response model
type RequestRescheduleResponse struct {
	ID              int64     `json:"id"`
	Status          string    `json:"status"`
	ProposedStartAt time.Time `json:"proposedStartAt"`
	ProposedEndAt   time.Time `json:"proposedEndAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
