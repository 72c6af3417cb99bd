package lease

import (
	"sort"
	"time"

	"github.com/propbase/billing/internal/types"
	"github.com/shopspring/decimal"
)

// Lease represents a tenancy over a unit. Leases are created and edited by
// lease management, which is external to this core; billing only reads them.
type Lease struct {
	ID          string            `json:"id"`
	UnitID      string            `json:"unit_id"`
	TenantName  string            `json:"tenant_name,omitempty"`
	LeaseStatus types.LeaseStatus `json:"lease_status"`
	StartDate   time.Time         `json:"start_date"`
	EndDate     *time.Time        `json:"end_date,omitempty"`
	Terms       []*LeaseTerm      `json:"terms,omitempty"`
	types.BaseModel
}

// LeaseTerm is a versioned rent agreement within a lease's history. Terms are
// immutable once superseded; a rent change appends a new term.
type LeaseTerm struct {
	ID            string          `json:"id"`
	LeaseID       string          `json:"lease_id"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	MonthlyRent   decimal.Decimal `json:"monthly_rent"`
	types.BaseModel
}

// TermsInPeriod returns every term whose effective range intersects the
// inclusive billing period [periodStart, periodEnd], ordered by EffectiveFrom.
// Overlapping coverage is resolved by taking all intersecting terms, not just
// the latest one.
func (l *Lease) TermsInPeriod(periodStart, periodEnd time.Time) []*LeaseTerm {
	selected := make([]*LeaseTerm, 0, len(l.Terms))
	for _, term := range l.Terms {
		if term.Intersects(periodStart, periodEnd) {
			selected = append(selected, term)
		}
	}
	sortTermsByEffectiveFrom(selected)
	return selected
}

// Intersects reports whether the term's effective range overlaps the
// inclusive period [periodStart, periodEnd]. Comparison is at calendar-day
// granularity, so a time-of-day on either side never excludes a day that
// overlaps.
func (t *LeaseTerm) Intersects(periodStart, periodEnd time.Time) bool {
	if types.ToUTCDate(t.EffectiveFrom).After(types.ToUTCDate(periodEnd)) {
		return false
	}
	if t.EffectiveTo != nil && types.ToUTCDate(*t.EffectiveTo).Before(types.ToUTCDate(periodStart)) {
		return false
	}
	return true
}

func sortTermsByEffectiveFrom(terms []*LeaseTerm) {
	sort.Slice(terms, func(i, j int) bool {
		return terms[i].EffectiveFrom.Before(terms[j].EffectiveFrom)
	})
}
