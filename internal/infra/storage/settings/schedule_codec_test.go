package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
)

func TestDecodeWeekSchedule_CurrentSchema(t *testing.T) {
	raw := []byte(`{
		"monday": {"open": true, "ranges": [{"start_min": 540, "end_min": 780}, {"start_min": 840, "end_min": 1080}]},
		"sunday": {"open": false}
	}`)

	week, err := decodeWeekSchedule(raw)
	require.NoError(t, err)

	require.True(t, week.Monday.Open)
	require.Len(t, week.Monday.Ranges, 2)
	assert.Equal(t, domain.TimeRange{StartMin: 540, EndMin: 780}, week.Monday.Ranges[0])
	assert.Equal(t, domain.TimeRange{StartMin: 840, EndMin: 1080}, week.Monday.Ranges[1])

	assert.False(t, week.Sunday.Open)
	assert.Empty(t, week.Sunday.Ranges)
}

func TestDecodeWeekSchedule_LegacySingleRange(t *testing.T) {
	raw := []byte(`{"tuesday": {"open": true, "open_min": 600, "close_min": 1140}}`)

	week, err := decodeWeekSchedule(raw)
	require.NoError(t, err)

	require.True(t, week.Tuesday.Open)
	require.Len(t, week.Tuesday.Ranges, 1)
	assert.Equal(t, domain.TimeRange{StartMin: 600, EndMin: 1140}, week.Tuesday.Ranges[0])
}

func TestDecodeWeekSchedule_RangesWinOverLegacyFields(t *testing.T) {
	// смешанная запись: новая схема имеет приоритет
	raw := []byte(`{"friday": {"open": true, "open_min": 0, "close_min": 60, "ranges": [{"start_min": 540, "end_min": 1080}]}}`)

	week, err := decodeWeekSchedule(raw)
	require.NoError(t, err)

	require.Len(t, week.Friday.Ranges, 1)
	assert.Equal(t, 540, week.Friday.Ranges[0].StartMin)
}

func TestDecodeWeekSchedule_Empty(t *testing.T) {
	week, err := decodeWeekSchedule(nil)
	require.NoError(t, err)
	assert.False(t, week.Monday.Open)
}

func TestDecodeWeekSchedule_Malformed(t *testing.T) {
	_, err := decodeWeekSchedule([]byte(`{"monday": [1, 2]}`))
	assert.ErrorIs(t, err, ErrDecodeSchedule)
}

func TestEncodeWeekSchedule_MigratesLegacyOnWrite(t *testing.T) {
	legacy := []byte(`{"wednesday": {"open": true, "open_min": 540, "close_min": 1080}}`)

	week, err := decodeWeekSchedule(legacy)
	require.NoError(t, err)

	raw, err := encodeWeekSchedule(week)
	require.NoError(t, err)

	// после перекодирования устаревших полей быть не должно
	assert.NotContains(t, string(raw), "open_min")
	assert.Contains(t, string(raw), `"start_min":540`)

	again, err := decodeWeekSchedule(raw)
	require.NoError(t, err)
	assert.Equal(t, week, again)
}
