package types

import (
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/samber/lo"
)

// ChargeFrequency is how often a recurring charge is billed.
// Only MONTHLY charges are billed today; other frequencies exist on the model
// but are skipped by the recurring charge calculator.
type ChargeFrequency string

const (
	ChargeFrequencyMonthly   ChargeFrequency = "MONTHLY"
	ChargeFrequencyQuarterly ChargeFrequency = "QUARTERLY"
	ChargeFrequencyYearly    ChargeFrequency = "YEARLY"
	ChargeFrequencyOneTime   ChargeFrequency = "ONE_TIME"
)

func (f ChargeFrequency) String() string {
	return string(f)
}

func (f ChargeFrequency) Validate() error {
	allowed := []ChargeFrequency{
		ChargeFrequencyMonthly,
		ChargeFrequencyQuarterly,
		ChargeFrequencyYearly,
		ChargeFrequencyOneTime,
	}
	if !lo.Contains(allowed, f) {
		return ierr.NewError("invalid charge frequency").
			WithHint("Please provide a valid charge frequency").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
