package types

import (
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus represents the current state of an invoice in its lifecycle
type InvoiceStatus string

const (
	// InvoiceStatusDraft indicates invoice is in draft state and can be modified or regenerated
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	// InvoiceStatusIssued indicates invoice has been issued and is awaiting payment
	InvoiceStatusIssued InvoiceStatus = "ISSUED"
	// InvoiceStatusPartiallyPaid indicates a payment smaller than the balance has been applied
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	// InvoiceStatusPaid indicates the invoice has been paid in full
	InvoiceStatusPaid InvoiceStatus = "PAID"
	// InvoiceStatusOverdue indicates the invoice passed its due date with an open balance
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
	// InvoiceStatusVoided indicates invoice has been voided and is no longer valid for payment
	InvoiceStatusVoided InvoiceStatus = "VOIDED"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusIssued,
		InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusVoided,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsVoidable reports whether the state machine permits voiding from this
// status. Drafts are deleted or regenerated instead, and paid-in-full
// invoices require a credit note.
func (s InvoiceStatus) IsVoidable() bool {
	return lo.Contains([]InvoiceStatus{
		InvoiceStatusIssued,
		InvoiceStatusPartiallyPaid,
		InvoiceStatusOverdue,
	}, s)
}

// IsCreditable reports whether a credit note may be raised against an
// invoice in this status.
func (s InvoiceStatus) IsCreditable() bool {
	return lo.Contains([]InvoiceStatus{
		InvoiceStatusIssued,
		InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
	}, s)
}
