package lease

import (
	"context"
)

// Repository defines the read-only lease contract this core consumes.
// Lease persistence is owned by the lease management system.
type Repository interface {
	// GetWithTerms retrieves a lease by ID including its ordered lease terms
	GetWithTerms(ctx context.Context, id string) (*Lease, error)

	// ListActive retrieves all leases with status ACTIVE for the
	// organization in the context
	ListActive(ctx context.Context) ([]*Lease, error)
}
