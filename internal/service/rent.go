package service

import (
	"context"
	"time"

	"github.com/propbase/billing/internal/domain/lease"
	"github.com/propbase/billing/internal/domain/proration"
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/types"
	"github.com/propbase/billing/internal/validator"
	"github.com/shopspring/decimal"
)

// RentCalculationService splits a billing period across a lease's
// overlapping rent terms and prorates each partial slice.
type RentCalculationService interface {
	CalculateRent(ctx context.Context, req RentCalculationRequest) (*RentCalculationResult, error)
}

// RentCalculationRequest asks for the rent lines of one lease over one
// billing period.
type RentCalculationRequest struct {
	LeaseID         string                `json:"lease_id" validate:"required"`
	PeriodStart     time.Time             `json:"period_start" validate:"required"`
	PeriodEnd       time.Time             `json:"period_end" validate:"required"`
	ProrationMethod types.ProrationMethod `json:"proration_method" validate:"required"`
}

func (r RentCalculationRequest) Validate() error {
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

// RentLineResult is one rent line: a lease term clipped to the billing
// period, with the prorated amount for the clipped range.
type RentLineResult struct {
	LeaseTermID string          `json:"lease_term_id"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	IsProrated  bool            `json:"is_prorated"`
	Amount      decimal.Decimal `json:"amount"`
}

// RentCalculationResult is the ordered set of rent lines for a billing
// period and their sum.
type RentCalculationResult struct {
	Lines       []*RentLineResult `json:"lines"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
}

type rentCalculationService struct {
	ServiceParams
}

func NewRentCalculationService(params ServiceParams) RentCalculationService {
	return &rentCalculationService{
		ServiceParams: params,
	}
}

func (s *rentCalculationService) CalculateRent(ctx context.Context, req RentCalculationRequest) (*RentCalculationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l, err := s.LeaseRepo.GetWithTerms(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}

	periodStart := types.ToUTCDate(req.PeriodStart)
	periodEnd := types.ToUTCDate(req.PeriodEnd)
	calc := proration.NewCalculator(req.ProrationMethod)

	result := &RentCalculationResult{
		Lines:       []*RentLineResult{},
		TotalAmount: decimal.Zero,
	}

	// A lease with no terms covering the period is not an error here; the
	// caller decides whether an empty result is itself a failure.
	for _, term := range l.TermsInPeriod(periodStart, periodEnd) {
		line, err := s.calculateTermLine(term, periodStart, periodEnd, calc)
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

func (s *rentCalculationService) calculateTermLine(
	term *lease.LeaseTerm,
	periodStart, periodEnd time.Time,
	calc proration.Calculator,
) (*RentLineResult, error) {
	effectiveStart := types.MaxDate(types.ToUTCDate(term.EffectiveFrom), periodStart)
	effectiveEnd := periodEnd
	if term.EffectiveTo != nil {
		effectiveEnd = types.MinDate(types.ToUTCDate(*term.EffectiveTo), periodEnd)
	}

	// Defensive: the selection filter should never produce an empty clip
	if effectiveEnd.Before(effectiveStart) {
		return nil, nil
	}

	params := proration.Params{
		FullAmount:     term.MonthlyRent,
		EffectiveStart: effectiveStart,
		EffectiveEnd:   effectiveEnd,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
	}

	amount, err := calc.Calculate(params)
	if err != nil {
		return nil, err
	}

	return &RentLineResult{
		LeaseTermID: term.ID,
		MonthlyRent: term.MonthlyRent,
		PeriodStart: effectiveStart,
		PeriodEnd:   effectiveEnd,
		IsProrated:  !params.IsFullPeriod(),
		Amount:      amount,
	}, nil
}
