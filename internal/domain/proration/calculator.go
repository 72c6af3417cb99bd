package proration

import (
	"time"

	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/types"
	"github.com/shopspring/decimal"
)

// moneyPlaces is the scale every monetary result is rounded to.
// decimal.Round rounds half away from zero, which is the contract's rule.
const moneyPlaces = 2

// thirtyDayMonthDays is the fixed denominator of the thirty-day strategy.
var thirtyDayMonthDays = decimal.NewFromInt(30)

// Calculator scales a full-period amount down to the portion of the period
// actually applicable. Implementations are pure; no I/O, no shared state.
type Calculator interface {
	// Calculate prorates fullAmount for the effective range
	// [effectiveStart, effectiveEnd] within the billing period
	// [periodStart, periodEnd]. All four bounds are inclusive calendar days.
	Calculate(params Params) (decimal.Decimal, error)
}

// NewCalculator creates a proration calculator for the given method.
func NewCalculator(method types.ProrationMethod) Calculator {
	switch method {
	case types.ProrationMethodThirtyDayMonth:
		return &thirtyDayMonthCalculator{}
	default:
		return &actualDaysCalculator{}
	}
}

// actualDaysCalculator prorates against the actual inclusive day count of
// the billing period.
type actualDaysCalculator struct{}

func (c *actualDaysCalculator) Calculate(params Params) (decimal.Decimal, error) {
	if err := params.Validate(); err != nil {
		return decimal.Zero, err
	}

	daysInRange := types.DaysInclusive(params.EffectiveStart, params.EffectiveEnd)
	daysInPeriod := types.DaysInclusive(params.PeriodStart, params.PeriodEnd)

	return prorate(params.FullAmount, daysInRange, decimal.NewFromInt(int64(daysInPeriod))), nil
}

// thirtyDayMonthCalculator prorates against a fixed 30-day month, ignoring
// the actual period length.
type thirtyDayMonthCalculator struct{}

func (c *thirtyDayMonthCalculator) Calculate(params Params) (decimal.Decimal, error) {
	if err := params.Validate(); err != nil {
		return decimal.Zero, err
	}

	daysInRange := types.DaysInclusive(params.EffectiveStart, params.EffectiveEnd)

	return prorate(params.FullAmount, daysInRange, thirtyDayMonthDays), nil
}

func prorate(fullAmount decimal.Decimal, daysInRange int, daysInPeriod decimal.Decimal) decimal.Decimal {
	return fullAmount.
		Mul(decimal.NewFromInt(int64(daysInRange))).
		Div(daysInPeriod).
		Round(moneyPlaces)
}

// Validate checks the effective range lies within the period and that both
// ranges are well formed. An effective end before the effective start is the
// caller's bug; ranges like that must be filtered out before calling.
func (p Params) Validate() error {
	if p.PeriodStart.IsZero() || p.PeriodEnd.IsZero() {
		return ierr.NewError("billing period start and end are required").
			WithHint("Provide the full billing period bounds").
			Mark(ierr.ErrValidation)
	}
	if p.PeriodEnd.Before(p.PeriodStart) {
		return ierr.NewError("invalid billing period").
			WithHintf("period end %s precedes period start %s", fmtDate(p.PeriodEnd), fmtDate(p.PeriodStart)).
			Mark(ierr.ErrValidation)
	}
	if p.EffectiveEnd.Before(p.EffectiveStart) {
		return ierr.NewError("invalid effective range").
			WithHintf("effective end %s precedes effective start %s", fmtDate(p.EffectiveEnd), fmtDate(p.EffectiveStart)).
			Mark(ierr.ErrValidation)
	}
	if p.EffectiveStart.Before(p.PeriodStart) || p.EffectiveEnd.After(p.PeriodEnd) {
		return ierr.NewError("effective range outside billing period").
			WithHintf("effective range [%s, %s] must lie within [%s, %s]",
				fmtDate(p.EffectiveStart), fmtDate(p.EffectiveEnd), fmtDate(p.PeriodStart), fmtDate(p.PeriodEnd)).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func fmtDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
