package set_booking_status

import "time"

// Action действие провайдера над заявкой
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Request модель запроса на смену статуса бронирования провайдером
type Request struct {
	BookingID int64
	UserID    int64 // владелец провайдера
	Action    Action
	Reason    *string // причина отклонения (опционально)
}

// Response модель ответа с обновлённым бронированием
type Response struct {
	ID        int64
	Status    string
	UpdatedAt time.Time
}
