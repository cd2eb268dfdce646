package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeInterval(t *testing.T) {
	for _, allowed := range AllowedIntervals {
		assert.Equal(t, allowed, NormalizeInterval(allowed))
	}
	assert.Equal(t, DefaultIntervalMinutes, NormalizeInterval(0))
	assert.Equal(t, DefaultIntervalMinutes, NormalizeInterval(7))
	assert.Equal(t, DefaultIntervalMinutes, NormalizeInterval(90))
}

func TestBookingSettings_Normalize(t *testing.T) {
	s := &BookingSettings{IntervalMinutes: 25, DefaultCapacity: 0}
	s.Normalize()
	assert.Equal(t, DefaultIntervalMinutes, s.IntervalMinutes)
	assert.Equal(t, DefaultCapacity, s.DefaultCapacity)

	s = &BookingSettings{IntervalMinutes: 15, DefaultCapacity: 500}
	s.Normalize()
	assert.Equal(t, 15, s.IntervalMinutes)
	assert.Equal(t, MaxCapacity, s.DefaultCapacity)
}

func TestDefaultBookingSettings(t *testing.T) {
	s := DefaultBookingSettings(42)
	assert.Equal(t, int64(42), s.ProviderID)
	assert.False(t, s.Enabled)
	assert.False(t, s.AutoConfirm)
	assert.Equal(t, DefaultIntervalMinutes, s.IntervalMinutes)
	assert.Equal(t, DefaultCapacity, s.DefaultCapacity)
}

func TestEffectiveCapacity(t *testing.T) {
	assert.Equal(t, 2, EffectiveCapacity(3, 2))
	assert.Equal(t, 3, EffectiveCapacity(3, 5))
	assert.Equal(t, 1, EffectiveCapacity(0, 0))
	assert.Equal(t, 1, EffectiveCapacity(-1, 4))
}

func TestWeekSchedule_Validate(t *testing.T) {
	ok := WeekSchedule{
		Monday: DaySchedule{Open: true, Ranges: []TimeRange{{StartMin: 540, EndMin: 1080}}},
	}
	assert.NoError(t, ok.Validate())

	openWithoutRanges := WeekSchedule{Tuesday: DaySchedule{Open: true}}
	assert.Error(t, openWithoutRanges.Validate())

	inverted := WeekSchedule{
		Friday: DaySchedule{Open: true, Ranges: []TimeRange{{StartMin: 600, EndMin: 540}}},
	}
	assert.Error(t, inverted.Validate())

	pastMidnight := WeekSchedule{
		Saturday: DaySchedule{Open: true, Ranges: []TimeRange{{StartMin: 1200, EndMin: 25 * 60}}},
	}
	assert.Error(t, pastMidnight.Validate())
}

func TestWeekSchedule_ForWeekday(t *testing.T) {
	w := WeekSchedule{
		Monday: DaySchedule{Open: true, Ranges: []TimeRange{{StartMin: 540, EndMin: 1080}}},
		Sunday: DaySchedule{Open: false},
	}
	assert.True(t, w.ForWeekday(time.Monday).Open)
	assert.False(t, w.ForWeekday(time.Sunday).Open)
	assert.False(t, w.ForWeekday(time.Wednesday).Open)
}
