package service

import (
	"context"
	"time"

	"github.com/propbase/billing/internal/cache"
	"github.com/propbase/billing/internal/domain/charge"
	"github.com/propbase/billing/internal/domain/invoice"
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/types"
	"github.com/propbase/billing/internal/validator"
	"github.com/shopspring/decimal"
)

// InvoiceService generates invoices for a lease and billing period and
// drives the invoice state machine.
type InvoiceService interface {
	// GenerateInvoice composes rent and recurring charge lines into one
	// invoice. Regenerating for the same lease and period updates the
	// existing draft in place; issued or voided invoices are never touched.
	GenerateInvoice(ctx context.Context, req GenerateInvoiceRequest) (*invoice.Invoice, error)

	// IssueInvoice moves a draft invoice to ISSUED
	IssueInvoice(ctx context.Context, id string) (*invoice.Invoice, error)

	// VoidInvoice voids an issued invoice with the given reason. Drafts are
	// deleted or regenerated instead, and invoices with any payment applied
	// must be reversed through a credit note.
	VoidInvoice(ctx context.Context, id string, reason string) (*invoice.Invoice, error)

	// RecordPayment applies a positive payment toward the invoice balance,
	// moving it to PARTIALLY_PAID or PAID
	RecordPayment(ctx context.Context, id string, amount decimal.Decimal) (*invoice.Invoice, error)

	// MarkOverdue moves an unpaid invoice past its due date to OVERDUE
	MarkOverdue(ctx context.Context, id string, asOf time.Time) (*invoice.Invoice, error)

	// GetInvoice retrieves an invoice with its line items
	GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error)
}

// GenerateInvoiceRequest asks for an invoice covering one lease and one
// billing period.
type GenerateInvoiceRequest struct {
	LeaseID         string                `json:"lease_id" validate:"required"`
	PeriodStart     time.Time             `json:"period_start" validate:"required"`
	PeriodEnd       time.Time             `json:"period_end" validate:"required"`
	ProrationMethod types.ProrationMethod `json:"proration_method"`
}

func (r GenerateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.PeriodEnd.Before(r.PeriodStart) {
		return ierr.NewError("invalid billing period").
			WithHint("Billing period end must not precede its start").
			Mark(ierr.ErrValidation)
	}
	if r.ProrationMethod != "" {
		return r.ProrationMethod.Validate()
	}
	return nil
}

type invoiceService struct {
	ServiceParams
	rentCalc   RentCalculationService
	chargeCalc RecurringChargeCalculationService
	numberGen  NumberGeneratorService
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		rentCalc:      NewRentCalculationService(params),
		chargeCalc:    NewRecurringChargeCalculationService(params),
		numberGen:     NewNumberGeneratorService(params),
	}
}

func (s *invoiceService) GenerateInvoice(ctx context.Context, req GenerateInvoiceRequest) (*invoice.Invoice, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	method := req.ProrationMethod
	if method == "" {
		method = s.Config.Billing.DefaultProrationMethod
	}

	l, err := s.LeaseRepo.GetWithTerms(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}
	if l.LeaseStatus != types.LeaseStatusActive {
		return nil, ierr.NewError("lease is not active").
			WithHintf("lease %s has status %s and cannot be billed", l.ID, l.LeaseStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	periodStart := types.ToUTCDate(req.PeriodStart)
	periodEnd := types.ToUTCDate(req.PeriodEnd)

	// Idempotency: a draft already covering this exact lease and period is
	// updated in place. Issued and voided invoices never match; regenerating
	// an already-issued period requires an explicit void first.
	existing, err := s.InvoiceRepo.GetDraftForPeriod(ctx, req.LeaseID, periodStart, periodEnd)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	inv := existing
	isNew := inv == nil
	if isNew {
		invoiceDate := periodEnd
		inv = &invoice.Invoice{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
			LeaseID:       l.ID,
			InvoiceStatus: types.InvoiceStatusDraft,
			InvoiceDate:   invoiceDate,
			DueDate:       invoiceDate.AddDate(0, 0, s.Config.Billing.PaymentTermDays),
			PeriodStart:   periodStart,
			PeriodEnd:     periodEnd,
			PaidAmount:    decimal.Zero,
			BaseModel:     types.GetDefaultBaseModel(ctx),
		}

		// Numbers are assigned once, on first generation; updates never renumber
		number, err := s.numberGen.NextInvoiceNumber(ctx, "")
		if err != nil {
			return nil, err
		}
		inv.InvoiceNumber = number
	}

	lineItems, err := s.buildLineItems(ctx, inv, req.LeaseID, periodStart, periodEnd, method)
	if err != nil {
		return nil, err
	}

	inv.LineItems = lineItems
	inv.RecomputeTotals()
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if isNew {
		if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
			return nil, err
		}
	} else {
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return nil, err
		}
	}

	s.Logger.Infow("generated invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"lease_id", inv.LeaseID,
		"period_start", inv.PeriodStart,
		"period_end", inv.PeriodEnd,
		"total_amount", inv.TotalAmount,
		"updated_existing_draft", !isNew)

	return inv, nil
}

// buildLineItems assembles rent lines first, then recurring charge lines,
// with strictly increasing line numbers.
func (s *invoiceService) buildLineItems(
	ctx context.Context,
	inv *invoice.Invoice,
	leaseID string,
	periodStart, periodEnd time.Time,
	method types.ProrationMethod,
) ([]*invoice.LineItem, error) {
	rentType, err := s.chargeTypeByCode(ctx, s.Config.Billing.RentChargeTypeCode)
	if err != nil {
		if ierr.IsNotFound(err) {
			// A missing default rent charge type is a data-setup problem and
			// must fail loudly, not skip rent billing.
			return nil, ierr.WithError(err).
				WithHintf("default rent charge type %q is not configured", s.Config.Billing.RentChargeTypeCode).
				Mark(ierr.ErrConfiguration)
		}
		return nil, err
	}

	rentResult, err := s.rentCalc.CalculateRent(ctx, RentCalculationRequest{
		LeaseID:         leaseID,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		ProrationMethod: method,
	})
	if err != nil {
		return nil, err
	}

	chargeResult, err := s.chargeCalc.CalculateCharges(ctx, RecurringChargeCalculationRequest{
		LeaseID:         leaseID,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		ProrationMethod: method,
	})
	if err != nil {
		return nil, err
	}

	lineItems := make([]*invoice.LineItem, 0, len(rentResult.Lines)+len(chargeResult.Lines))
	lineNumber := 0

	for _, line := range rentResult.Lines {
		lineNumber++
		periodStart := line.PeriodStart
		periodEnd := line.PeriodEnd
		lineItems = append(lineItems, newLineItem(ctx, inv.ID, lineNumber, invoiceLineParams{
			description:  rentLineDescription(line),
			chargeTypeID: rentType.ID,
			leaseTermID:  line.LeaseTermID,
			periodStart:  &periodStart,
			periodEnd:    &periodEnd,
			isProrated:   line.IsProrated,
			amount:       line.Amount,
			taxRate:      rentType.TaxRatePercent,
		}))
	}

	for _, line := range chargeResult.Lines {
		chargeType, err := s.chargeTypeByID(ctx, line.ChargeTypeID)
		if err != nil {
			if ierr.IsNotFound(err) {
				// One misconfigured charge type must not block the whole
				// invoice; skip the line and keep going.
				s.Logger.Warnw("skipping recurring charge line with unknown charge type",
					"recurring_charge_id", line.RecurringChargeID,
					"charge_type_id", line.ChargeTypeID,
					"lease_id", leaseID)
				continue
			}
			return nil, err
		}

		lineNumber++
		periodStart := line.PeriodStart
		periodEnd := line.PeriodEnd
		lineItems = append(lineItems, newLineItem(ctx, inv.ID, lineNumber, invoiceLineParams{
			description:  chargeType.Name,
			chargeTypeID: chargeType.ID,
			periodStart:  &periodStart,
			periodEnd:    &periodEnd,
			isProrated:   line.IsProrated,
			amount:       line.Amount,
			taxRate:      chargeType.TaxRatePercent,
		}))
	}

	return lineItems, nil
}

type invoiceLineParams struct {
	description  string
	chargeTypeID string
	leaseTermID  string
	periodStart  *time.Time
	periodEnd    *time.Time
	isProrated   bool
	amount       decimal.Decimal
	taxRate      decimal.Decimal
}

func newLineItem(ctx context.Context, invoiceID string, lineNumber int, p invoiceLineParams) *invoice.LineItem {
	taxAmount := p.amount.Mul(p.taxRate).Div(decimal.NewFromInt(100)).Round(2)
	return &invoice.LineItem{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
		InvoiceID:    invoiceID,
		LineNumber:   lineNumber,
		Description:  p.description,
		ChargeTypeID: p.chargeTypeID,
		LeaseTermID:  p.leaseTermID,
		PeriodStart:  p.periodStart,
		PeriodEnd:    p.periodEnd,
		IsProrated:   p.isProrated,
		Amount:       p.amount,
		TaxAmount:    taxAmount,
		TotalAmount:  p.amount.Add(taxAmount),
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

func rentLineDescription(line *RentLineResult) string {
	if line.IsProrated {
		return "Rent (prorated)"
	}
	return "Rent"
}

func (s *invoiceService) IssueInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.GetWithLineItems(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus != types.InvoiceStatusDraft {
		return nil, ierr.NewError("invoice cannot be issued").
			WithHintf("invoice %s has status %s; only drafts can be issued", inv.ID, inv.InvoiceStatus).
			Mark(ierr.ErrInvalidOperation)
	}
	if len(inv.LineItems) == 0 {
		return nil, ierr.NewError("invoice cannot be issued").
			WithHintf("invoice %s has no line items", inv.ID).
			Mark(ierr.ErrInvalidOperation)
	}
	if !inv.TotalAmount.IsPositive() {
		return nil, ierr.NewError("invoice cannot be issued").
			WithHintf("invoice %s total must be positive, got %s", inv.ID, inv.TotalAmount).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	inv.InvoiceStatus = types.InvoiceStatusIssued
	inv.IssuedAt = &now
	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("issued invoice", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber)
	return inv, nil
}

func (s *invoiceService) VoidInvoice(ctx context.Context, id string, reason string) (*invoice.Invoice, error) {
	if reason == "" {
		return nil, ierr.NewError("void reason is required").
			WithHint("Please provide a reason for voiding the invoice").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.GetWithLineItems(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inv.InvoiceStatus.IsVoidable() {
		return nil, ierr.NewError("invoice cannot be voided from its current status").
			WithHintf("invoice %s is %s; only issued, partially paid or overdue invoices can be voided", inv.ID, inv.InvoiceStatus).
			Mark(ierr.ErrInvalidOperation)
	}
	if inv.PaidAmount.IsPositive() {
		return nil, ierr.NewError("invoice with payments cannot be voided").
			WithHintf("invoice %s has %s paid; issue a credit note instead", inv.ID, inv.PaidAmount).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	inv.InvoiceStatus = types.InvoiceStatusVoided
	inv.VoidedAt = &now
	inv.VoidReason = reason
	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("voided invoice", "invoice_id", inv.ID, "reason", reason)
	return inv, nil
}

func (s *invoiceService) RecordPayment(ctx context.Context, id string, amount decimal.Decimal) (*invoice.Invoice, error) {
	if !amount.IsPositive() {
		return nil, ierr.NewError("payment amount must be positive").
			WithHint("Please provide a positive payment amount").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.GetWithLineItems(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := inv.InvoiceStatus == types.InvoiceStatusIssued ||
		inv.InvoiceStatus == types.InvoiceStatusPartiallyPaid ||
		inv.InvoiceStatus == types.InvoiceStatusOverdue
	if !allowed {
		return nil, ierr.NewError("invoice cannot accept payments").
			WithHintf("invoice %s has status %s", inv.ID, inv.InvoiceStatus).
			Mark(ierr.ErrInvalidOperation)
	}
	if amount.GreaterThan(inv.BalanceAmount) {
		return nil, ierr.NewError("payment exceeds invoice balance").
			WithHintf("payment %s exceeds the open balance %s", amount, inv.BalanceAmount).
			Mark(ierr.ErrValidation)
	}

	now := time.Now().UTC()
	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.BalanceAmount = inv.TotalAmount.Sub(inv.PaidAmount)
	if inv.BalanceAmount.IsZero() {
		inv.InvoiceStatus = types.InvoiceStatusPaid
		inv.PaidAt = &now
	} else {
		inv.InvoiceStatus = types.InvoiceStatusPartiallyPaid
	}
	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded payment",
		"invoice_id", inv.ID,
		"amount", amount,
		"paid_amount", inv.PaidAmount,
		"status", inv.InvoiceStatus)
	return inv, nil
}

func (s *invoiceService) MarkOverdue(ctx context.Context, id string, asOf time.Time) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.GetWithLineItems(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus != types.InvoiceStatusIssued && inv.InvoiceStatus != types.InvoiceStatusPartiallyPaid {
		return nil, ierr.NewError("invoice cannot be marked overdue").
			WithHintf("invoice %s has status %s", inv.ID, inv.InvoiceStatus).
			Mark(ierr.ErrInvalidOperation)
	}
	if !asOf.After(inv.DueDate) {
		return nil, ierr.NewError("invoice is not past due").
			WithHintf("invoice %s is due on %s", inv.ID, inv.DueDate.Format("2006-01-02")).
			Mark(ierr.ErrInvalidOperation)
	}

	inv.InvoiceStatus = types.InvoiceStatusOverdue
	inv.UpdatedAt = time.Now().UTC()
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	return s.InvoiceRepo.GetWithLineItems(ctx, id)
}

// chargeTypeByID resolves a charge type through the per-organization cache.
func (s *invoiceService) chargeTypeByID(ctx context.Context, id string) (*charge.ChargeType, error) {
	key := cache.GenerateKey(cache.PrefixChargeType, types.GetOrganizationID(ctx), "id", id)
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, key); ok {
			if ct, ok := cached.(*charge.ChargeType); ok {
				return ct, nil
			}
		}
	}

	ct, err := s.ChargeTypeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, key, ct, cache.DefaultExpiration)
	}
	return ct, nil
}

// chargeTypeByCode resolves a charge type by its well-known code through the
// per-organization cache.
func (s *invoiceService) chargeTypeByCode(ctx context.Context, code string) (*charge.ChargeType, error) {
	key := cache.GenerateKey(cache.PrefixChargeType, types.GetOrganizationID(ctx), "code", code)
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, key); ok {
			if ct, ok := cached.(*charge.ChargeType); ok {
				return ct, nil
			}
		}
	}

	ct, err := s.ChargeTypeRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, key, ct, cache.DefaultExpiration)
	}
	return ct, nil
}
