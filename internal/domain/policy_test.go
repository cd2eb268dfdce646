package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancellationFee(t *testing.T) {
	policy := DefaultPolicyParams()
	startAt := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("free when cancelled early enough", func(t *testing.T) {
		now := startAt.Add(-25 * time.Hour)
		percent, amount := policy.CancellationFee(50, startAt, now, true)
		assert.Zero(t, percent)
		assert.Zero(t, amount)
	})

	t.Run("free exactly on the boundary", func(t *testing.T) {
		now := startAt.Add(-24 * time.Hour)
		percent, amount := policy.CancellationFee(50, startAt, now, true)
		assert.Zero(t, percent)
		assert.Zero(t, amount)
	})

	t.Run("fee inside the late window", func(t *testing.T) {
		now := startAt.Add(-2 * time.Hour)
		percent, amount := policy.CancellationFee(50, startAt, now, true)
		assert.Equal(t, 15.0, percent)
		assert.Equal(t, 7.5, amount)
	})

	t.Run("no fee when payment never settled", func(t *testing.T) {
		now := startAt.Add(-1 * time.Hour)
		percent, amount := policy.CancellationFee(50, startAt, now, false)
		assert.Zero(t, percent)
		assert.Zero(t, amount)
	})

	t.Run("amount is rounded to cents", func(t *testing.T) {
		now := startAt.Add(-1 * time.Hour)
		_, amount := policy.CancellationFee(33.33, startAt, now, true)
		assert.Equal(t, 5.0, amount) // 33.33 * 0.15 = 4.9995
	})
}

func TestReferralCommission(t *testing.T) {
	policy := DefaultPolicyParams()

	percent, amount := policy.ReferralCommission(100, 10)
	assert.Equal(t, 10.0, percent)
	assert.Equal(t, 10.0, amount)

	// declared percent above the cap is clamped
	percent, amount = policy.ReferralCommission(100, 50)
	assert.Equal(t, 30.0, percent)
	assert.Equal(t, 30.0, amount)

	percent, amount = policy.ReferralCommission(100, 0)
	assert.Zero(t, percent)
	assert.Zero(t, amount)
}

func TestReminderTimes(t *testing.T) {
	startAt := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("both reminders in the future", func(t *testing.T) {
		now := startAt.Add(-48 * time.Hour)
		dayBefore, twoHours := ReminderTimes(startAt, now)
		require.NotNil(t, dayBefore)
		require.NotNil(t, twoHours)
		assert.Equal(t, startAt.Add(-24*time.Hour), *dayBefore)
		assert.Equal(t, startAt.Add(-2*time.Hour), *twoHours)
	})

	t.Run("24h reminder already passed", func(t *testing.T) {
		now := startAt.Add(-3 * time.Hour)
		dayBefore, twoHours := ReminderTimes(startAt, now)
		assert.Nil(t, dayBefore)
		require.NotNil(t, twoHours)
		assert.Equal(t, startAt.Add(-2*time.Hour), *twoHours)
	})

	t.Run("booking starts within two hours", func(t *testing.T) {
		now := startAt.Add(-30 * time.Minute)
		dayBefore, twoHours := ReminderTimes(startAt, now)
		assert.Nil(t, dayBefore)
		assert.Nil(t, twoHours)
	})
}

func TestNoShowAllowedAt(t *testing.T) {
	policy := DefaultPolicyParams()
	startAt := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, startAt.Add(20*time.Minute), policy.NoShowAllowedAt(startAt))
}

func TestCheckInCodeExpiry(t *testing.T) {
	policy := DefaultPolicyParams()
	now := time.Date(2026, 3, 10, 13, 50, 0, 0, time.UTC)

	assert.Equal(t, now.Add(15*time.Minute), policy.CheckInCodeExpiry(now))
}
