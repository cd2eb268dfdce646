package create_booking

import (
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	createBooking "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/create_booking"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ProviderID int64  `json:"providerId"`
	StaffID    *int64 `json:"staffId,omitempty"`
	ServiceID  int64  `json:"serviceId"`
	Date       string `json:"date"`      // "2026-03-15"
	StartTime  string `json:"startTime"` // "10:00"

	CustomerName  string  `json:"customerName,omitempty"`
	CustomerPhone string  `json:"customerPhone,omitempty"`
	Notes         *string `json:"notes,omitempty"`

	AllowSameDayDuplicate bool `json:"allowSameDayDuplicate,omitempty"`

	ReferralPostID    *string `json:"referralPostId,omitempty"`
	ReferralCreatorID *int64  `json:"referralCreatorId,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(customerID int64) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		CustomerID:            customerID,
		ProviderID:            r.ProviderID,
		StaffID:               r.StaffID,
		ServiceID:             r.ServiceID,
		Date:                  date,
		StartTime:             startTime,
		CustomerName:          r.CustomerName,
		CustomerPhone:         r.CustomerPhone,
		Notes:                 r.Notes,
		AllowSameDayDuplicate: r.AllowSameDayDuplicate,
		ReferralPostID:        r.ReferralPostID,
		ReferralCreatorID:     r.ReferralCreatorID,
	}, nil
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	ID         int64  `json:"id"`
	ProviderID int64  `json:"providerId"`
	StaffID    *int64 `json:"staffId,omitempty"`
	ServiceID  int64  `json:"serviceId"`
	CustomerID int64  `json:"customerId"`

	BookingDate string    `json:"bookingDate"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	Status      string    `json:"status"`
	SeatIndex   int       `json:"seatIndex"`

	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`

	ReferralPercent float64 `json:"referralPercent,omitempty"`
	ReferralAmount  float64 `json:"referralAmount,omitempty"`

	Notes *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	return &CreateBookingResponse{
		ID:              resp.ID,
		ProviderID:      resp.ProviderID,
		StaffID:         resp.StaffID,
		ServiceID:       resp.ServiceID,
		CustomerID:      resp.CustomerID,
		BookingDate:     resp.BookingDate.Format(domain.DateFormat),
		StartAt:         resp.StartAt,
		EndAt:           resp.EndAt,
		Status:          resp.Status,
		SeatIndex:       resp.SeatIndex,
		ServiceName:     resp.ServiceName,
		ServicePrice:    resp.ServicePrice,
		ReferralPercent: resp.ReferralPercent,
		ReferralAmount:  resp.ReferralAmount,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt,
		UpdatedAt:       resp.UpdatedAt,
	}
}
