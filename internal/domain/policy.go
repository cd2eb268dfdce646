package domain

import (
	"math"
	"time"
)

// PolicyParams holds the numeric booking policies. All of them are
// configuration, not constants: the defaults mirror the product decisions
// but none of the values is load-bearing.
type PolicyParams struct {
	CancellationFreeHours  int
	CancellationFeePercent float64
	ReferralMaxPercent     float64
	NoShowGraceMinutes     int
	MaxCustomerReschedules int
	SameDayLeadMinutes     int
	CheckInCodeTTLMinutes  int
}

// DefaultPolicyParams returns the stock policy values.
func DefaultPolicyParams() PolicyParams {
	return PolicyParams{
		CancellationFreeHours:  24,
		CancellationFeePercent: 15,
		ReferralMaxPercent:     30,
		NoShowGraceMinutes:     20,
		MaxCustomerReschedules: 1,
		SameDayLeadMinutes:     5,
		CheckInCodeTTLMinutes:  15,
	}
}

// CancellationFee computes the late-cancellation fee. Zero when the
// cancellation happens at least CancellationFreeHours before the start, or
// when payment never settled (no fee on unpaid holds); otherwise a fixed
// percentage of the service price.
func (p PolicyParams) CancellationFee(servicePrice float64, startAt, now time.Time, settled bool) (percent float64, amount float64) {
	if !settled {
		return 0, 0
	}
	if startAt.Sub(now) >= time.Duration(p.CancellationFreeHours)*time.Hour {
		return 0, 0
	}
	percent = p.CancellationFeePercent
	amount = roundMoney(servicePrice * percent / 100)
	return percent, amount
}

// ReferralCommission computes the commission owed to a promotional post's
// creator: servicePrice × min(cap, declaredPercent).
func (p PolicyParams) ReferralCommission(servicePrice, declaredPercent float64) (percent float64, amount float64) {
	if declaredPercent <= 0 {
		return 0, 0
	}
	percent = math.Min(declaredPercent, p.ReferralMaxPercent)
	amount = roundMoney(servicePrice * percent / 100)
	return percent, amount
}

// ReminderTimes returns the reminder timestamps (start−24h, start−2h).
// A reminder is only scheduled when it still lies in the future at creation
// time; otherwise the corresponding slot is nil.
func ReminderTimes(startAt, now time.Time) (dayBefore *time.Time, twoHours *time.Time) {
	if t := startAt.Add(-24 * time.Hour); t.After(now) {
		dayBefore = &t
	}
	if t := startAt.Add(-2 * time.Hour); t.After(now) {
		twoHours = &t
	}
	return dayBefore, twoHours
}

// NoShowAllowedAt returns the earliest instant a provider may report a
// no-show for a booking starting at startAt.
func (p PolicyParams) NoShowAllowedAt(startAt time.Time) time.Time {
	return startAt.Add(time.Duration(p.NoShowGraceMinutes) * time.Minute)
}

// CheckInCodeExpiry returns the expiry timestamp of a code issued at now.
func (p PolicyParams) CheckInCodeExpiry(now time.Time) time.Time {
	return now.Add(time.Duration(p.CheckInCodeTTLMinutes) * time.Minute)
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
