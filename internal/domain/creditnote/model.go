package creditnote

import (
	"time"

	"github.com/propbase/billing/internal/types"
	"github.com/shopspring/decimal"
)

// CreditNote is a negative-value document reversing part of an issued
// invoice. Created once per credit action; issuance is terminal.
type CreditNote struct {
	ID               string            `json:"id"`
	InvoiceID        string            `json:"invoice_id"`
	CreditNoteNumber string            `json:"credit_note_number"`
	Reason           string            `json:"reason,omitempty"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	AppliedAt        *time.Time        `json:"applied_at,omitempty"`
	LineItems        []*CreditNoteLine `json:"line_items,omitempty"`
	// Version is the optimistic concurrency token guarding issuance
	Version int `json:"version"`
	types.BaseModel
}

// CreditNoteLine reverses part of one invoice line. All amounts are stored
// negated; TotalAmount always equals the negated requested credit.
type CreditNoteLine struct {
	ID                string          `json:"id"`
	CreditNoteID      string          `json:"credit_note_id"`
	InvoiceLineItemID string          `json:"invoice_line_item_id"`
	Description       string          `json:"description,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	types.BaseModel
}

// IsApplied reports whether the credit note has been issued.
func (c *CreditNote) IsApplied() bool {
	return c.AppliedAt != nil
}

// RecomputeTotal rebuilds the (negative) note total from its lines.
func (c *CreditNote) RecomputeTotal() {
	total := decimal.Zero
	for _, line := range c.LineItems {
		total = total.Add(line.TotalAmount)
	}
	c.TotalAmount = total
}
