package propose_time

import (
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	proposeTime "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/propose_time"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/types"
)

// ProposeTimeRequest HTTP request model
type ProposeTimeRequest struct {
	Date      string  `json:"date"`      // "2026-03-15"
	StartTime string  `json:"startTime"` // "10:00"
	Note      *string `json:"note,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ProposeTimeRequest) ToUseCaseRequest(bookingID, userID int64) (*proposeTime.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &proposeTime.Request{
		BookingID: bookingID,
		UserID:    userID,
		Date:      date,
		StartTime: startTime,
		Note:      r.Note,
	}, nil
}

// ProposeTimeResponse HTTP response model
type ProposeTimeResponse struct {
	ID              int64     `json:"id"`
	Status          string    `json:"status"`
	ProposedStartAt time.Time `json:"proposedStartAt"`
	ProposedEndAt   time.Time `json:"proposedEndAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
