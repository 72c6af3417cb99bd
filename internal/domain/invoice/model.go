package invoice

import (
	"time"

	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents one billing document for a lease over a billing period.
// At most one draft exists per lease and period; that pair is the idempotency
// key for generation. Invoices are created in DRAFT and are never physically
// deleted by this core.
type Invoice struct {
	ID            string              `json:"id"`
	LeaseID       string              `json:"lease_id"`
	InvoiceNumber string              `json:"invoice_number"`
	InvoiceStatus types.InvoiceStatus `json:"invoice_status"`
	InvoiceDate   time.Time           `json:"invoice_date"`
	DueDate       time.Time           `json:"due_date"`
	PeriodStart   time.Time           `json:"period_start"`
	PeriodEnd     time.Time           `json:"period_end"`
	SubTotal      decimal.Decimal     `json:"sub_total"`
	TaxAmount     decimal.Decimal     `json:"tax_amount"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	PaidAmount    decimal.Decimal     `json:"paid_amount"`
	BalanceAmount decimal.Decimal     `json:"balance_amount"`
	IssuedAt      *time.Time          `json:"issued_at,omitempty"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	VoidedAt      *time.Time          `json:"voided_at,omitempty"`
	VoidReason    string              `json:"void_reason,omitempty"`
	LineItems     []*LineItem         `json:"line_items,omitempty"`
	// Version is the opaque optimistic concurrency token; every read returns
	// it and every write requires it
	Version int `json:"version"`
	types.BaseModel
}

// RecomputeTotals rebuilds the invoice rollups from its line items.
func (i *Invoice) RecomputeTotals() {
	subTotal := decimal.Zero
	taxAmount := decimal.Zero
	totalAmount := decimal.Zero
	for _, item := range i.LineItems {
		subTotal = subTotal.Add(item.Amount)
		taxAmount = taxAmount.Add(item.TaxAmount)
		totalAmount = totalAmount.Add(item.TotalAmount)
	}
	i.SubTotal = subTotal
	i.TaxAmount = taxAmount
	i.TotalAmount = totalAmount
	i.BalanceAmount = i.TotalAmount.Sub(i.PaidAmount)
}

// Validate checks the internal consistency of the invoice amounts and period.
func (i *Invoice) Validate() error {
	if i.PaidAmount.IsNegative() {
		return ierr.NewError("invalid invoice state").
			WithHint("paid amount must be non negative").
			Mark(ierr.ErrValidation)
	}
	if i.PaidAmount.GreaterThan(i.TotalAmount) {
		return ierr.NewError("invalid invoice state").
			WithHint("paid amount must not exceed total amount").
			Mark(ierr.ErrValidation)
	}
	if !i.PaidAmount.Add(i.BalanceAmount).Equal(i.TotalAmount) {
		return ierr.NewError("invalid invoice state").
			WithHint("balance amount must equal total amount minus paid amount").
			Mark(ierr.ErrValidation)
	}
	if i.PeriodEnd.Before(i.PeriodStart) {
		return ierr.NewError("invalid invoice state").
			WithHint("period end must not precede period start").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// FindLineItem returns the line item with the given ID, or nil.
func (i *Invoice) FindLineItem(lineItemID string) *LineItem {
	for _, item := range i.LineItems {
		if item.ID == lineItemID {
			return item
		}
	}
	return nil
}
