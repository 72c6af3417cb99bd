package charge

import (
	"time"

	"github.com/propbase/billing/internal/types"
	"github.com/shopspring/decimal"
)

// RecurringCharge is a fee attached to a lease, billed alongside rent.
// Created and edited by lease management; read-only to this core.
type RecurringCharge struct {
	ID           string                `json:"id"`
	LeaseID      string                `json:"lease_id"`
	ChargeTypeID string                `json:"charge_type_id"`
	Amount       decimal.Decimal       `json:"amount"`
	Frequency    types.ChargeFrequency `json:"frequency"`
	StartDate    time.Time             `json:"start_date"`
	EndDate      *time.Time            `json:"end_date,omitempty"`
	IsActive     bool                  `json:"is_active"`
	types.BaseModel
}

// Intersects reports whether the charge's active range overlaps the
// inclusive period [periodStart, periodEnd]. Comparison is at calendar-day
// granularity, so a time-of-day on either side never excludes a day that
// overlaps.
func (c *RecurringCharge) Intersects(periodStart, periodEnd time.Time) bool {
	if types.ToUTCDate(c.StartDate).After(types.ToUTCDate(periodEnd)) {
		return false
	}
	if c.EndDate != nil && types.ToUTCDate(*c.EndDate).Before(types.ToUTCDate(periodStart)) {
		return false
	}
	return true
}

// ChargeType is a ledger category a billed line is attributed to.
type ChargeType struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	types.BaseModel
}
