package domain

import (
	"fmt"
	"time"
)

// TimeRange is a half-open [StartMin, EndMin) interval in minutes of day.
type TimeRange struct {
	StartMin int
	EndMin   int
}

// Valid reports whether the range is well-formed and non-empty.
func (r TimeRange) Valid() bool {
	return r.StartMin >= 0 && r.EndMin <= 24*60 && r.EndMin > r.StartMin
}

// ContainsWindow reports whether [startMin, endMin) fits entirely inside the range.
func (r TimeRange) ContainsWindow(startMin, endMin int) bool {
	return startMin >= r.StartMin && endMin <= r.EndMin
}

// DaySchedule is the availability of one weekday: closed, or open over one
// or more non-overlapping time ranges.
type DaySchedule struct {
	Open   bool
	Ranges []TimeRange
}

// WeekSchedule is a provider's weekly availability.
type WeekSchedule struct {
	Monday    DaySchedule
	Tuesday   DaySchedule
	Wednesday DaySchedule
	Thursday  DaySchedule
	Friday    DaySchedule
	Saturday  DaySchedule
	Sunday    DaySchedule
}

// ForWeekday returns the schedule of the given weekday.
func (w WeekSchedule) ForWeekday(d time.Weekday) DaySchedule {
	switch d {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return DaySchedule{Open: false}
	}
}

// Validate checks every open day carries only valid, non-empty ranges.
func (w WeekSchedule) Validate() error {
	days := map[string]DaySchedule{
		"monday": w.Monday, "tuesday": w.Tuesday, "wednesday": w.Wednesday,
		"thursday": w.Thursday, "friday": w.Friday, "saturday": w.Saturday,
		"sunday": w.Sunday,
	}
	for name, day := range days {
		if !day.Open {
			continue
		}
		if len(day.Ranges) == 0 {
			return fmt.Errorf("domain: %s is open but has no time ranges", name)
		}
		for _, r := range day.Ranges {
			if !r.Valid() {
				return fmt.Errorf("domain: %s has invalid time range [%d, %d)", name, r.StartMin, r.EndMin)
			}
		}
	}
	return nil
}

// BookingSettings is a provider's booking configuration. Read-mostly;
// rewritten wholesale on settings save, never merged partially.
type BookingSettings struct {
	ProviderID      int64
	Enabled         bool
	IntervalMinutes int
	AutoConfirm     bool
	DefaultCapacity int
	Week            WeekSchedule
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Normalize coerces the settings into canonical form: the interval must be
// one of AllowedIntervals (falls back to the default), capacity is clamped
// to at least 1.
func (s *BookingSettings) Normalize() {
	s.IntervalMinutes = NormalizeInterval(s.IntervalMinutes)
	if s.DefaultCapacity < MinCapacity {
		s.DefaultCapacity = DefaultCapacity
	}
	if s.DefaultCapacity > MaxCapacity {
		s.DefaultCapacity = MaxCapacity
	}
}

// NormalizeInterval maps any value outside AllowedIntervals to the default.
func NormalizeInterval(minutes int) int {
	for _, allowed := range AllowedIntervals {
		if minutes == allowed {
			return minutes
		}
	}
	return DefaultIntervalMinutes
}

// DefaultBookingSettings returns the settings used when a provider has
// never saved any.
func DefaultBookingSettings(providerID int64) *BookingSettings {
	return &BookingSettings{
		ProviderID:      providerID,
		Enabled:         false,
		IntervalMinutes: DefaultIntervalMinutes,
		AutoConfirm:     false,
		DefaultCapacity: DefaultCapacity,
	}
}

// EffectiveCapacity resolves the seat count for a service:
// min(provider default, service capacity), both clamped to >= 1.
func EffectiveCapacity(providerDefault, serviceCapacity int) int {
	if providerDefault < MinCapacity {
		providerDefault = MinCapacity
	}
	if serviceCapacity < MinCapacity {
		serviceCapacity = MinCapacity
	}
	if serviceCapacity < providerDefault {
		return serviceCapacity
	}
	return providerDefault
}
