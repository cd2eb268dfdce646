package settings

import (
	"encoding/json"
	"fmt"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
)

// dayJSON формат дня в колонке week_schedule.
// Поддерживает две версии схемы:
//   - текущая: {"open": true, "ranges": [{"start_min": 540, "end_min": 1080}]}
//   - устаревшая: {"open": true, "open_min": 540, "close_min": 1080}
//
// Устаревшие записи поднимаются до списка диапазонов здесь, на границе
// хранилища — выше этого слоя одно-диапазонная схема не существует.
type dayJSON struct {
	Open   bool        `json:"open"`
	Ranges []rangeJSON `json:"ranges,omitempty"`

	// Поля устаревшей схемы (одна смена на день)
	OpenMin  *int `json:"open_min,omitempty"`
	CloseMin *int `json:"close_min,omitempty"`
}

type rangeJSON struct {
	StartMin int `json:"start_min"`
	EndMin   int `json:"end_min"`
}

type weekJSON struct {
	Monday    dayJSON `json:"monday"`
	Tuesday   dayJSON `json:"tuesday"`
	Wednesday dayJSON `json:"wednesday"`
	Thursday  dayJSON `json:"thursday"`
	Friday    dayJSON `json:"friday"`
	Saturday  dayJSON `json:"saturday"`
	Sunday    dayJSON `json:"sunday"`
}

// decodeWeekSchedule разбирает JSON недельного расписания с миграцией
// устаревших записей
func decodeWeekSchedule(raw []byte) (domain.WeekSchedule, error) {
	if len(raw) == 0 {
		return domain.WeekSchedule{}, nil
	}

	var wj weekJSON
	if err := json.Unmarshal(raw, &wj); err != nil {
		return domain.WeekSchedule{}, fmt.Errorf("%w: %v", ErrDecodeSchedule, err)
	}

	return domain.WeekSchedule{
		Monday:    upgradeDay(wj.Monday),
		Tuesday:   upgradeDay(wj.Tuesday),
		Wednesday: upgradeDay(wj.Wednesday),
		Thursday:  upgradeDay(wj.Thursday),
		Friday:    upgradeDay(wj.Friday),
		Saturday:  upgradeDay(wj.Saturday),
		Sunday:    upgradeDay(wj.Sunday),
	}, nil
}

// upgradeDay конвертирует день в доменную модель, поднимая устаревшую
// одно-диапазонную запись до списка диапазонов
func upgradeDay(d dayJSON) domain.DaySchedule {
	day := domain.DaySchedule{Open: d.Open}

	if len(d.Ranges) > 0 {
		day.Ranges = make([]domain.TimeRange, 0, len(d.Ranges))
		for _, r := range d.Ranges {
			day.Ranges = append(day.Ranges, domain.TimeRange{StartMin: r.StartMin, EndMin: r.EndMin})
		}
		return day
	}

	// Устаревшая схема: одиночные open_min/close_min
	if d.OpenMin != nil && d.CloseMin != nil {
		day.Ranges = []domain.TimeRange{{StartMin: *d.OpenMin, EndMin: *d.CloseMin}}
	}

	return day
}

// encodeWeekSchedule сериализует расписание всегда в текущей схеме —
// запись настроек одновременно мигрирует устаревшие записи
func encodeWeekSchedule(w domain.WeekSchedule) ([]byte, error) {
	encode := func(d domain.DaySchedule) dayJSON {
		out := dayJSON{Open: d.Open}
		for _, r := range d.Ranges {
			out.Ranges = append(out.Ranges, rangeJSON{StartMin: r.StartMin, EndMin: r.EndMin})
		}
		return out
	}

	raw, err := json.Marshal(weekJSON{
		Monday:    encode(w.Monday),
		Tuesday:   encode(w.Tuesday),
		Wednesday: encode(w.Wednesday),
		Thursday:  encode(w.Thursday),
		Friday:    encode(w.Friday),
		Saturday:  encode(w.Saturday),
		Sunday:    encode(w.Sunday),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeSchedule, err)
	}
	return raw, nil
}
