package service

import (
	"context"
	"fmt"

	ierr "github.com/propbase/billing/internal/errors"
	"github.com/shopspring/decimal"
)

// UtilityCalculationService computes utility charges from a supplied bill
// amount, a flat meter rate, or a tiered rate plan.
type UtilityCalculationService interface {
	CalculateAmountBased(ctx context.Context, req AmountBasedUtilityRequest) (*UtilityCalculationResult, error)
	CalculateFlatRate(ctx context.Context, req FlatRateUtilityRequest) (*UtilityCalculationResult, error)
	CalculateSlabBased(ctx context.Context, req SlabBasedUtilityRequest) (*UtilityCalculationResult, error)
}

// AmountBasedUtilityRequest passes a provider bill amount through unchanged.
type AmountBasedUtilityRequest struct {
	BillAmount decimal.Decimal `json:"bill_amount"`
}

// FlatRateUtilityRequest bills metered consumption at a single rate plus an
// optional fixed charge.
type FlatRateUtilityRequest struct {
	UnitsConsumed decimal.Decimal `json:"units_consumed"`
	RatePerUnit   decimal.Decimal `json:"rate_per_unit"`
	FixedCharge   decimal.Decimal `json:"fixed_charge"`
}

// SlabBasedUtilityRequest bills metered consumption against a tiered rate plan.
type SlabBasedUtilityRequest struct {
	RatePlanID    string          `json:"rate_plan_id" validate:"required"`
	UnitsConsumed decimal.Decimal `json:"units_consumed"`
}

// UtilityBreakdownLine is one slab (or the whole consumption for flat-rate)
// of a utility calculation.
type UtilityBreakdownLine struct {
	Description   string           `json:"description"`
	UnitsConsumed decimal.Decimal  `json:"units_consumed"`
	RatePerUnit   decimal.Decimal  `json:"rate_per_unit"`
	FixedCharge   *decimal.Decimal `json:"fixed_charge,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
}

// UtilityCalculationResult is the total utility charge with its breakdown.
type UtilityCalculationResult struct {
	Lines       []*UtilityBreakdownLine `json:"lines,omitempty"`
	TotalAmount decimal.Decimal         `json:"total_amount"`
}

type utilityCalculationService struct {
	ServiceParams
}

func NewUtilityCalculationService(params ServiceParams) UtilityCalculationService {
	return &utilityCalculationService{
		ServiceParams: params,
	}
}

func (s *utilityCalculationService) CalculateAmountBased(ctx context.Context, req AmountBasedUtilityRequest) (*UtilityCalculationResult, error) {
	if req.BillAmount.IsNegative() {
		return nil, ierr.NewError("bill amount must not be negative").
			WithHint("Please provide a non-negative bill amount").
			Mark(ierr.ErrValidation)
	}

	return &UtilityCalculationResult{
		TotalAmount: req.BillAmount.Round(2),
	}, nil
}

func (s *utilityCalculationService) CalculateFlatRate(ctx context.Context, req FlatRateUtilityRequest) (*UtilityCalculationResult, error) {
	if req.UnitsConsumed.IsNegative() {
		return nil, ierr.NewError("units consumed must not be negative").
			WithHint("Please provide a non-negative consumption").
			Mark(ierr.ErrValidation)
	}
	if req.RatePerUnit.IsNegative() {
		return nil, ierr.NewError("rate per unit must not be negative").
			WithHint("Please provide a non-negative rate").
			Mark(ierr.ErrValidation)
	}
	if req.FixedCharge.IsNegative() {
		return nil, ierr.NewError("fixed charge must not be negative").
			WithHint("Please provide a non-negative fixed charge").
			Mark(ierr.ErrValidation)
	}

	amount := req.UnitsConsumed.Mul(req.RatePerUnit).Add(req.FixedCharge).Round(2)

	line := &UtilityBreakdownLine{
		Description:   "Metered consumption at flat rate",
		UnitsConsumed: req.UnitsConsumed,
		RatePerUnit:   req.RatePerUnit,
		Amount:        amount,
	}
	if req.FixedCharge.IsPositive() {
		fixed := req.FixedCharge
		line.FixedCharge = &fixed
	}

	return &UtilityCalculationResult{
		Lines:       []*UtilityBreakdownLine{line},
		TotalAmount: amount,
	}, nil
}

func (s *utilityCalculationService) CalculateSlabBased(ctx context.Context, req SlabBasedUtilityRequest) (*UtilityCalculationResult, error) {
	if req.RatePlanID == "" {
		return nil, ierr.NewError("rate plan id is required").
			WithHint("Please provide a rate plan id").
			Mark(ierr.ErrValidation)
	}
	if req.UnitsConsumed.IsNegative() {
		return nil, ierr.NewError("units consumed must not be negative").
			WithHint("Please provide a non-negative consumption").
			Mark(ierr.ErrValidation)
	}

	plan, err := s.RatePlanRepo.GetWithSlabs(ctx, req.RatePlanID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ierr.NewError("rate plan is not active").
			WithHintf("rate plan %s is inactive and cannot be billed against", plan.ID).
			Mark(ierr.ErrConfiguration)
	}
	if err := plan.ValidateSlabs(); err != nil {
		return nil, err
	}

	result := &UtilityCalculationResult{
		Lines:       []*UtilityBreakdownLine{},
		TotalAmount: decimal.Zero,
	}

	// Consumption beyond the capacity of a bounded final slab is not billed;
	// plans that must price all consumption end with an open-ended slab.
	remaining := req.UnitsConsumed
	for _, slab := range plan.OrderedSlabs() {
		if !remaining.IsPositive() {
			break
		}

		unitsInSlab := remaining
		if capacity := slab.Capacity(); capacity != nil && unitsInSlab.GreaterThan(*capacity) {
			unitsInSlab = *capacity
		}

		amount := unitsInSlab.Mul(slab.RatePerUnit)
		if slab.FixedCharge != nil {
			amount = amount.Add(*slab.FixedCharge)
		}
		amount = amount.Round(2)

		result.Lines = append(result.Lines, &UtilityBreakdownLine{
			Description:   slabDescription(slab.FromUnits, slab.ToUnits),
			UnitsConsumed: unitsInSlab,
			RatePerUnit:   slab.RatePerUnit,
			FixedCharge:   slab.FixedCharge,
			Amount:        amount,
		})
		result.TotalAmount = result.TotalAmount.Add(amount)

		remaining = remaining.Sub(unitsInSlab)
	}

	result.TotalAmount = result.TotalAmount.Round(2)
	return result, nil
}

func slabDescription(from decimal.Decimal, to *decimal.Decimal) string {
	if to == nil {
		return fmt.Sprintf("Consumption above %s units", from.String())
	}
	return fmt.Sprintf("Consumption from %s to %s units", from.String(), to.String())
}
