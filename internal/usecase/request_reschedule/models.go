package request_reschedule

import (
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/pkg/types"
)

// Request модель запроса клиента на перенос в рамках того же дня
type Request struct {
	BookingID int64
	UserID    int64 // клиент — владелец бронирования
	StartTime types.TimeString
	Note      *string
}

// Response модель ответа с открытым запросом на перенос
type Response struct {
	ID              int64
	Status          string
	ProposedStartAt time.Time
	ProposedEndAt   time.Time
	UpdatedAt       time.Time
}
