package create_booking

import (
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	CustomerID int64            // ID клиента
	ProviderID int64            // ID провайдера
	StaffID    *int64           // ID сотрудника (опционально, nil = общий пул мест)
	ServiceID  int64            // ID услуги
	Date       time.Time        // Дата бронирования (без времени)
	StartTime  types.TimeString // Время начала слота (например, "10:00")

	CustomerName  string // Имя клиента для провайдера
	CustomerPhone string // Телефон клиента

	Notes *string // Дополнительные заметки (опционально)

	// Подтверждение повторной записи на тот же день
	AllowSameDayDuplicate bool

	// Реферальная метка промо-поста, из которого пришла запись
	ReferralPostID    *string
	ReferralCreatorID *int64
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID         int64
	ProviderID int64
	StaffID    *int64
	ServiceID  int64
	CustomerID int64

	BookingDate time.Time
	StartAt     time.Time
	EndAt       time.Time
	Status      string
	SeatIndex   int

	ServiceName  string
	ServicePrice float64

	ReferralPercent float64
	ReferralAmount  float64

	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
