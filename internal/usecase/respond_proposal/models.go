package respond_proposal

import "time"

// Action ответ клиента на предложение провайдера
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
)

// Request модель запроса клиента с ответом на предложение
type Request struct {
	BookingID int64
	UserID    int64 // клиент — владелец бронирования
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
