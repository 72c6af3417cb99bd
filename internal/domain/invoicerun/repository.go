package invoicerun

import (
	"context"
)

// Repository defines the interface for invoice run persistence. Runs are
// written once, with all their items, after the run finishes (or is
// cancelled); they are never updated afterward.
type Repository interface {
	// Create persists a finalized run and its items
	Create(ctx context.Context, run *InvoiceRun) error

	// Get retrieves a run by ID including its items
	Get(ctx context.Context, id string) (*InvoiceRun, error)
}
