package get_available_slots

import (
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	getAvailableSlots "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/get_available_slots"
)

// GetAvailableSlotsResponse HTTP response model
type GetAvailableSlotsResponse struct {
	Date       string                   `json:"date"`
	ProviderID int64                    `json:"providerId"`
	StaffID    *int64                   `json:"staffId,omitempty"`
	ServiceID  int64                    `json:"serviceId"`
	Slots      []getAvailableSlots.Slot `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *getAvailableSlots.Response) *GetAvailableSlotsResponse {
	return &GetAvailableSlotsResponse{
		Date:       resp.Date.Format(domain.DateFormat),
		ProviderID: resp.ProviderID,
		StaffID:    resp.StaffID,
		ServiceID:  resp.ServiceID,
		Slots:      resp.Slots,
	}
}

// parseDate парсит дату из query параметра
func parseDate(s string) (time.Time, error) {
	return time.Parse(domain.DateFormat, s)
}
