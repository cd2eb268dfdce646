package respond_reschedule

import "time"

// Action решение провайдера по запросу клиента на перенос
type Action string

const (
	ActionApprove Action = "approve"
	ActionDecline Action = "decline"
)

// Request модель запроса провайдера с решением по переносу
type Request struct {
	BookingID int64
	UserID    int64 // владелец провайдера
	Action    Action
}

// Response модель ответа с обновлённым бронированием
type Response struct {
	ID        int64
	Status    string
	StartAt   time.Time
	EndAt     time.Time
	UpdatedAt time.Time
}
