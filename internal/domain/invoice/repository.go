package invoice

import (
	"context"
	"time"
)

// Repository defines the interface for invoice persistence operations.
// Update is optimistic: the stored version must match the version on the
// passed invoice or the write fails with a version conflict. A successful
// update increments the version.
type Repository interface {
	// Create creates a new invoice with its line items
	Create(ctx context.Context, inv *Invoice) error

	// Get retrieves an invoice by ID without line items
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetWithLineItems retrieves an invoice by ID including its line items
	GetWithLineItems(ctx context.Context, id string) (*Invoice, error)

	// GetDraftForPeriod retrieves the draft invoice covering the exact lease
	// and billing period, if one exists. This is the idempotency lookup; it
	// never returns issued or voided invoices.
	GetDraftForPeriod(ctx context.Context, leaseID string, periodStart, periodEnd time.Time) (*Invoice, error)

	// Update replaces the invoice and its line items, guarded by the
	// invoice's version token
	Update(ctx context.Context, inv *Invoice) error
}
