package models

import (
	"errors"
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetCustomerBookingsRequest запрос на получение бронирований клиента
type GetCustomerBookingsRequest struct {
	CustomerID int64    `json:"customerId"`
	Statuses   []string `json:"statuses,omitempty"`
}

// GetProviderBookingsRequest запрос на получение бронирований провайдера
type GetProviderBookingsRequest struct {
	UserID          int64      `json:"userId"`
	ProviderID      int64      `json:"providerId"`
	StaffID         *int64     `json:"staffId,omitempty"`
	ServiceID       *int64     `json:"serviceId,omitempty"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	Statuses        []string   `json:"statuses,omitempty"`
	IncludeInactive bool       `json:"includeInactive,omitempty"`
}

// ToDomainFilter конвертирует запрос в domain фильтр.
// Выборки провайдера всегда скрывают неоплаченные бронирования.
func (r *GetProviderBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		ProviderID:      r.ProviderID,
		StaffID:         r.StaffID,
		ServiceID:       r.ServiceID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
		SettledOnly:     true,
	}

	for _, s := range r.Statuses {
		status, err := ToDomainBookingStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	return filter, nil
}

// ConfirmCheckInRequest запрос клиента на подтверждение чек-ина
type ConfirmCheckInRequest struct {
	CustomerID int64  `json:"-"`
	Code       string `json:"code"`
}

// RejectCheckInRequest запрос клиента на отклонение чек-ина
type RejectCheckInRequest struct {
	CustomerID int64  `json:"-"`
	Reason     string `json:"reason,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID         int64  `json:"id"`
	ProviderID int64  `json:"providerId"`
	StaffID    *int64 `json:"staffId,omitempty"`
	ServiceID  int64  `json:"serviceId"`
	CustomerID int64  `json:"customerId"`

	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`

	BookingDate string    `json:"bookingDate"` // "2026-03-15"
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`

	Status         string `json:"status"`
	PaymentSettled bool   `json:"paymentSettled"`

	ProposalBy      *string    `json:"proposalBy,omitempty"`
	ProposedStartAt *time.Time `json:"proposedStartAt,omitempty"`
	ProposedEndAt   *time.Time `json:"proposedEndAt,omitempty"`
	ProposalNote    *string    `json:"proposalNote,omitempty"`

	CheckedInAt *time.Time `json:"checkedInAt,omitempty"`

	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`

	CancellationFeePercent float64 `json:"cancellationFeePercent,omitempty"`
	CancellationFeeAmount  float64 `json:"cancellationFeeAmount,omitempty"`

	Notes              *string    `json:"notes,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// CheckInCodeResponse ответ с выпущенным кодом чек-ина
type CheckInCodeResponse struct {
	BookingID int64     `json:"bookingId"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
	QRCodePNG string    `json:"qrCodePng"` // base64 PNG
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                     b.ID,
		ProviderID:             b.ProviderID,
		StaffID:                b.StaffID,
		ServiceID:              b.ServiceID,
		CustomerID:             b.CustomerID,
		CustomerName:           b.CustomerName,
		CustomerPhone:          b.CustomerPhone,
		BookingDate:            b.BookingDate.Format(domain.DateFormat),
		StartAt:                b.StartAt,
		EndAt:                  b.EndAt,
		Status:                 string(b.Status),
		PaymentSettled:         b.PaymentSettled,
		ProposedStartAt:        b.ProposedStartAt,
		ProposedEndAt:          b.ProposedEndAt,
		ProposalNote:           b.ProposalNote,
		CheckedInAt:            b.CheckedInAt,
		ServiceName:            b.ServiceName,
		ServicePrice:           b.ServicePrice,
		CancellationFeePercent: b.CancellationFeePercent,
		CancellationFeeAmount:  b.CancellationFeeAmount,
		Notes:                  b.Notes,
		CancellationReason:     b.CancellationReason,
		CancelledAt:            b.CancelledAt,
		CreatedAt:              b.CreatedAt,
		UpdatedAt:              b.UpdatedAt,
	}

	if b.ProposalBy != nil {
		by := string(*b.ProposalBy)
		resp.ProposalBy = &by
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// ToDomainStatuses конвертирует список строк в статусы с валидацией
func ToDomainStatuses(statuses []string) ([]domain.BookingStatus, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	out := make([]domain.BookingStatus, 0, len(statuses))
	for _, s := range statuses {
		status, err := ToDomainBookingStatus(s)
		if err != nil {
			return nil, err
		}
		out = append(out, status)
	}
	return out, nil
}
