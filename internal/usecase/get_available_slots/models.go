package get_available_slots

import (
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ProviderID int64     // ID провайдера
	StaffID    *int64    // ID сотрудника (опционально, nil = общий пул мест)
	ServiceID  int64     // ID услуги
	Date       time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date       time.Time // Дата, на которую запрашивались слоты
	ProviderID int64     // ID провайдера
	StaffID    *int64    // ID сотрудника
	ServiceID  int64     // ID услуги
	Slots      []Slot    // Список доступных слотов по возрастанию времени
}

// Slot модель временного слота
type Slot struct {
	Key             string `json:"key"`             // Время начала, "10:00"
	Label           string `json:"label"`           // Подпись, "10:00 - 10:30"
	DurationMinutes int    `json:"durationMinutes"` // Длительность услуги
	AvailableSeats  int    `json:"availableSeats"`  // Свободные места
	TotalSeats      int    `json:"totalSeats"`      // Всего мест
}

// fromDomainSlots конвертирует доменные слоты в DTO
func fromDomainSlots(slots []domain.AvailableSlot) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, Slot{
			Key:             s.Key,
			Label:           s.Label,
			DurationMinutes: s.DurationMinutes,
			AvailableSeats:  s.AvailableSeats,
			TotalSeats:      s.TotalSeats,
		})
	}
	return out
}
