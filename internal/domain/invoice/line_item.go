package invoice

import (
	"time"

	"github.com/propbase/billing/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem is a single charge on an invoice. Line numbers are assigned in a
// fixed order (rent lines first, then recurring charge lines) and stay stable
// for a given input set.
type LineItem struct {
	ID           string          `json:"id"`
	InvoiceID    string          `json:"invoice_id"`
	LineNumber   int             `json:"line_number"`
	Description  string          `json:"description"`
	ChargeTypeID string          `json:"charge_type_id,omitempty"`
	LeaseTermID  string          `json:"lease_term_id,omitempty"`
	PeriodStart  *time.Time      `json:"period_start,omitempty"`
	PeriodEnd    *time.Time      `json:"period_end,omitempty"`
	IsProrated   bool            `json:"is_prorated"`
	Amount       decimal.Decimal `json:"amount"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	types.BaseModel
}
