package tariff

import (
	"sort"

	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/types"
	"github.com/shopspring/decimal"
)

// RatePlan is a tiered utility tariff made of ordered consumption slabs.
type RatePlan struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	UtilityType string      `json:"utility_type,omitempty"`
	IsActive    bool        `json:"is_active"`
	Slabs       []*RateSlab `json:"slabs,omitempty"`
	types.BaseModel
}

// RateSlab is one consumption band of a tiered tariff. ToUnits nil means the
// slab is unbounded (the last slab).
type RateSlab struct {
	ID          string           `json:"id"`
	RatePlanID  string           `json:"rate_plan_id"`
	FromUnits   decimal.Decimal  `json:"from_units"`
	ToUnits     *decimal.Decimal `json:"to_units,omitempty"`
	RatePerUnit decimal.Decimal  `json:"rate_per_unit"`
	FixedCharge *decimal.Decimal `json:"fixed_charge,omitempty"`
	SlabOrder   int              `json:"slab_order"`
	types.BaseModel
}

// OrderedSlabs returns the plan's slabs sorted by SlabOrder.
func (p *RatePlan) OrderedSlabs() []*RateSlab {
	slabs := make([]*RateSlab, len(p.Slabs))
	copy(slabs, p.Slabs)
	sort.Slice(slabs, func(i, j int) bool {
		return slabs[i].SlabOrder < slabs[j].SlabOrder
	})
	return slabs
}

// ValidateSlabs checks slab contiguity. The first slab must start at or below
// zero and each subsequent slab must start at or below the prior slab's upper
// bound. A broken configuration fails the calculation loudly rather than
// silently skipping units. Validated at calculation time, not at plan-edit
// time, since plan editing is external to this core.
func (p *RatePlan) ValidateSlabs() error {
	slabs := p.OrderedSlabs()
	if len(slabs) == 0 {
		return ierr.NewError("rate plan has no slabs").
			WithHintf("rate plan %s must have at least one slab", p.ID).
			Mark(ierr.ErrConfiguration)
	}

	if slabs[0].FromUnits.GreaterThan(decimal.Zero) {
		return ierr.NewError("invalid slab configuration").
			WithHintf("first slab of rate plan %s must start at or below zero units", p.ID).
			Mark(ierr.ErrConfiguration)
	}

	for i := 1; i < len(slabs); i++ {
		prev := slabs[i-1]
		if prev.ToUnits == nil {
			return ierr.NewError("invalid slab configuration").
				WithHintf("slab %d of rate plan %s is unbounded but not the last slab", prev.SlabOrder, p.ID).
				Mark(ierr.ErrConfiguration)
		}
		if slabs[i].FromUnits.GreaterThan(*prev.ToUnits) {
			return ierr.NewError("invalid slab configuration").
				WithHintf("slab %d of rate plan %s leaves a gap after %s units", slabs[i].SlabOrder, p.ID, prev.ToUnits.String()).
				Mark(ierr.ErrConfiguration)
		}
	}

	return nil
}

// Capacity returns the number of units the slab can absorb, or nil when the
// slab is unbounded.
func (s *RateSlab) Capacity() *decimal.Decimal {
	if s.ToUnits == nil {
		return nil
	}
	capacity := s.ToUnits.Sub(s.FromUnits)
	return &capacity
}
