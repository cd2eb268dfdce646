package propose_time

import (
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/pkg/types"
)

// Request модель запроса провайдера на предложение нового времени
type Request struct {
	BookingID int64
	UserID    int64 // владелец провайдера
	Date      time.Time
	StartTime types.TimeString
	Note      *string
}

// Response модель ответа с открытым предложением
type Response struct {
	ID              int64
	Status          string
	ProposedStartAt time.Time
	ProposedEndAt   time.Time
	UpdatedAt       time.Time
}
