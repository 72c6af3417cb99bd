package proration

import (
	"time"

	"github.com/shopspring/decimal"
)

// Params holds the input for one proration calculation.
// The effective range is the sub-range actually billable and must lie within
// the billing period; all bounds are inclusive calendar days.
type Params struct {
	FullAmount     decimal.Decimal // full-period amount before proration
	EffectiveStart time.Time       // first billable day
	EffectiveEnd   time.Time       // last billable day
	PeriodStart    time.Time       // first day of the billing period
	PeriodEnd      time.Time       // last day of the billing period
}

// IsFullPeriod reports whether the effective range covers the entire billing
// period, in which case no proration applies.
func (p Params) IsFullPeriod() bool {
	return p.EffectiveStart.Equal(p.PeriodStart) && p.EffectiveEnd.Equal(p.PeriodEnd)
}
