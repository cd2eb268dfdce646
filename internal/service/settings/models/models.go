package models

import (
	"errors"
	"fmt"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/types"
)

var (
	// ErrInvalidRange возвращается при некорректном временном диапазоне
	ErrInvalidRange = errors.New("invalid time range")
)

// TimeRangeDTO диапазон рабочего времени в формате HH:MM
type TimeRangeDTO struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

// DayScheduleDTO расписание одного дня недели
type DayScheduleDTO struct {
	Open   bool           `json:"open"`
	Ranges []TimeRangeDTO `json:"ranges,omitempty"`
}

// WeekScheduleDTO недельное расписание
type WeekScheduleDTO struct {
	Monday    DayScheduleDTO `json:"monday"`
	Tuesday   DayScheduleDTO `json:"tuesday"`
	Wednesday DayScheduleDTO `json:"wednesday"`
	Thursday  DayScheduleDTO `json:"thursday"`
	Friday    DayScheduleDTO `json:"friday"`
	Saturday  DayScheduleDTO `json:"saturday"`
	Sunday    DayScheduleDTO `json:"sunday"`
}

// Request модели

// UpdateSettingsRequest запрос на сохранение настроек бронирования.
// Настройки сохраняются целиком — частичного слияния нет.
type UpdateSettingsRequest struct {
	UserID          int64           `json:"-"`
	ProviderID      int64           `json:"-"`
	Enabled         bool            `json:"enabled"`
	IntervalMinutes int             `json:"intervalMinutes"`
	AutoConfirm     bool            `json:"autoConfirm"`
	DefaultCapacity int             `json:"defaultCapacity"`
	Week            WeekScheduleDTO `json:"weekSchedule"`
}

// Response модели

// SettingsResponse ответ с настройками бронирования провайдера
type SettingsResponse struct {
	ProviderID      int64           `json:"providerId"`
	Enabled         bool            `json:"enabled"`
	IntervalMinutes int             `json:"intervalMinutes"`
	AutoConfirm     bool            `json:"autoConfirm"`
	DefaultCapacity int             `json:"defaultCapacity"`
	Week            WeekScheduleDTO `json:"weekSchedule"`
}

// Методы конвертации

// ToDomainSettings конвертирует запрос в доменную модель с валидацией диапазонов
func (r *UpdateSettingsRequest) ToDomainSettings() (*domain.BookingSettings, error) {
	week, err := toDomainWeek(r.Week)
	if err != nil {
		return nil, err
	}

	s := &domain.BookingSettings{
		ProviderID:      r.ProviderID,
		Enabled:         r.Enabled,
		IntervalMinutes: r.IntervalMinutes,
		AutoConfirm:     r.AutoConfirm,
		DefaultCapacity: r.DefaultCapacity,
		Week:            week,
	}
	s.Normalize()

	return s, nil
}

// FromDomainSettings конвертирует доменную модель в DTO
func FromDomainSettings(s *domain.BookingSettings) *SettingsResponse {
	if s == nil {
		return nil
	}

	return &SettingsResponse{
		ProviderID:      s.ProviderID,
		Enabled:         s.Enabled,
		IntervalMinutes: s.IntervalMinutes,
		AutoConfirm:     s.AutoConfirm,
		DefaultCapacity: s.DefaultCapacity,
		Week:            fromDomainWeek(s.Week),
	}
}

func toDomainWeek(w WeekScheduleDTO) (domain.WeekSchedule, error) {
	var out domain.WeekSchedule
	var err error

	if out.Monday, err = toDomainDay(w.Monday); err != nil {
		return out, fmt.Errorf("monday: %w", err)
	}
	if out.Tuesday, err = toDomainDay(w.Tuesday); err != nil {
		return out, fmt.Errorf("tuesday: %w", err)
	}
	if out.Wednesday, err = toDomainDay(w.Wednesday); err != nil {
		return out, fmt.Errorf("wednesday: %w", err)
	}
	if out.Thursday, err = toDomainDay(w.Thursday); err != nil {
		return out, fmt.Errorf("thursday: %w", err)
	}
	if out.Friday, err = toDomainDay(w.Friday); err != nil {
		return out, fmt.Errorf("friday: %w", err)
	}
	if out.Saturday, err = toDomainDay(w.Saturday); err != nil {
		return out, fmt.Errorf("saturday: %w", err)
	}
	if out.Sunday, err = toDomainDay(w.Sunday); err != nil {
		return out, fmt.Errorf("sunday: %w", err)
	}

	return out, nil
}

func toDomainDay(d DayScheduleDTO) (domain.DaySchedule, error) {
	day := domain.DaySchedule{Open: d.Open}

	for _, r := range d.Ranges {
		startMin, err := r.Start.MinuteOfDay()
		if err != nil {
			return day, fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}
		endMin, err := r.End.MinuteOfDay()
		if err != nil {
			return day, fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}

		tr := domain.TimeRange{StartMin: startMin, EndMin: endMin}
		if !tr.Valid() {
			return day, fmt.Errorf("%w: [%s, %s)", ErrInvalidRange, r.Start, r.End)
		}
		day.Ranges = append(day.Ranges, tr)
	}

	return day, nil
}

func fromDomainWeek(w domain.WeekSchedule) WeekScheduleDTO {
	return WeekScheduleDTO{
		Monday:    fromDomainDay(w.Monday),
		Tuesday:   fromDomainDay(w.Tuesday),
		Wednesday: fromDomainDay(w.Wednesday),
		Thursday:  fromDomainDay(w.Thursday),
		Friday:    fromDomainDay(w.Friday),
		Saturday:  fromDomainDay(w.Saturday),
		Sunday:    fromDomainDay(w.Sunday),
	}
}

func fromDomainDay(d domain.DaySchedule) DayScheduleDTO {
	out := DayScheduleDTO{Open: d.Open}
	for _, r := range d.Ranges {
		out.Ranges = append(out.Ranges, TimeRangeDTO{
			Start: types.NewTimeStringFromMinutes(r.StartMin),
			End:   types.NewTimeStringFromMinutes(r.EndMin),
		})
	}
	return out
}
