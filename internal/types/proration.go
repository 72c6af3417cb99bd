package types

import (
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/samber/lo"
)

// ProrationMethod selects how a full-period amount is scaled down to a
// partial billing range.
type ProrationMethod string

const (
	// ProrationMethodActualDaysInMonth scales by the actual inclusive day count
	// of the billing period
	ProrationMethodActualDaysInMonth ProrationMethod = "ACTUAL_DAYS_IN_MONTH"
	// ProrationMethodThirtyDayMonth scales against a fixed 30-day month
	// regardless of the actual period length
	ProrationMethodThirtyDayMonth ProrationMethod = "THIRTY_DAY_MONTH"
)

func (m ProrationMethod) String() string {
	return string(m)
}

func (m ProrationMethod) Validate() error {
	allowed := []ProrationMethod{
		ProrationMethodActualDaysInMonth,
		ProrationMethodThirtyDayMonth,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid proration method").
			WithHint("Please provide a valid proration method").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
