package service

import (
	"context"
	"time"

	"github.com/propbase/billing/internal/domain/charge"
	"github.com/propbase/billing/internal/domain/proration"
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/types"
	"github.com/propbase/billing/internal/validator"
	"github.com/shopspring/decimal"
)

// RecurringChargeCalculationService applies the rent select/clip/prorate
// pattern to a lease's independent recurring charges.
type RecurringChargeCalculationService interface {
	CalculateCharges(ctx context.Context, req RecurringChargeCalculationRequest) (*RecurringChargeCalculationResult, error)
}

// RecurringChargeCalculationRequest asks for the recurring charge lines of
// one lease over one billing period.
type RecurringChargeCalculationRequest struct {
	LeaseID         string                `json:"lease_id" validate:"required"`
	PeriodStart     time.Time             `json:"period_start" validate:"required"`
	PeriodEnd       time.Time             `json:"period_end" validate:"required"`
	ProrationMethod types.ProrationMethod `json:"proration_method" validate:"required"`
}

func (r RecurringChargeCalculationRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.PeriodEnd.Before(r.PeriodStart) {
		return ierr.NewError("invalid billing period").
			WithHint("Billing period end must not precede its start").
			Mark(ierr.ErrValidation)
	}
	return r.ProrationMethod.Validate()
}

// RecurringChargeLineResult is one recurring charge clipped to the billing
// period with its prorated amount. ChargeTypeID attributes the line to the
// correct ledger category downstream.
type RecurringChargeLineResult struct {
	RecurringChargeID string          `json:"recurring_charge_id"`
	ChargeTypeID      string          `json:"charge_type_id"`
	FullAmount        decimal.Decimal `json:"full_amount"`
	PeriodStart       time.Time       `json:"period_start"`
	PeriodEnd         time.Time       `json:"period_end"`
	IsProrated        bool            `json:"is_prorated"`
	Amount            decimal.Decimal `json:"amount"`
}

// RecurringChargeCalculationResult is the ordered set of recurring charge
// lines for a billing period and their sum.
type RecurringChargeCalculationResult struct {
	Lines       []*RecurringChargeLineResult `json:"lines"`
	TotalAmount decimal.Decimal              `json:"total_amount"`
}

type recurringChargeCalculationService struct {
	ServiceParams
}

func NewRecurringChargeCalculationService(params ServiceParams) RecurringChargeCalculationService {
	return &recurringChargeCalculationService{
		ServiceParams: params,
	}
}

func (s *recurringChargeCalculationService) CalculateCharges(ctx context.Context, req RecurringChargeCalculationRequest) (*RecurringChargeCalculationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	charges, err := s.ChargeRepo.ListActiveByLease(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}

	periodStart := types.ToUTCDate(req.PeriodStart)
	periodEnd := types.ToUTCDate(req.PeriodEnd)
	calc := proration.NewCalculator(req.ProrationMethod)

	result := &RecurringChargeCalculationResult{
		Lines:       []*RecurringChargeLineResult{},
		TotalAmount: decimal.Zero,
	}

	for _, c := range charges {
		// Only monthly charges are billed today. Charges with other
		// frequencies stay on the lease but never produce lines.
		if c.Frequency != types.ChargeFrequencyMonthly {
			s.Logger.Debugw("skipping non-monthly recurring charge",
				"recurring_charge_id", c.ID,
				"frequency", c.Frequency)
			continue
		}
		if !c.IsActive || !c.Intersects(periodStart, periodEnd) {
			continue
		}

		line, err := s.calculateChargeLine(c, periodStart, periodEnd, calc)
		if err != nil {
			return nil, err
		}
		if line == nil {
			continue
		}
		result.Lines = append(result.Lines, line)
		result.TotalAmount = result.TotalAmount.Add(line.Amount)
	}

	return result, nil
}

func (s *recurringChargeCalculationService) calculateChargeLine(
	c *charge.RecurringCharge,
	periodStart, periodEnd time.Time,
	calc proration.Calculator,
) (*RecurringChargeLineResult, error) {
	effectiveStart := types.MaxDate(types.ToUTCDate(c.StartDate), periodStart)
	effectiveEnd := periodEnd
	if c.EndDate != nil {
		effectiveEnd = types.MinDate(types.ToUTCDate(*c.EndDate), periodEnd)
	}

	if effectiveEnd.Before(effectiveStart) {
		return nil, nil
	}

	params := proration.Params{
		FullAmount:     c.Amount,
		EffectiveStart: effectiveStart,
		EffectiveEnd:   effectiveEnd,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
	}

	amount, err := calc.Calculate(params)
	if err != nil {
		return nil, err
	}

	return &RecurringChargeLineResult{
		RecurringChargeID: c.ID,
		ChargeTypeID:      c.ChargeTypeID,
		FullAmount:        c.Amount,
		PeriodStart:       effectiveStart,
		PeriodEnd:         effectiveEnd,
		IsProrated:        !params.IsFullPeriod(),
		Amount:            amount,
	}, nil
}
