package charge

import (
	"context"
)

// Repository defines the read-only recurring charge contract this core consumes
type Repository interface {
	// ListActiveByLease retrieves all active recurring charges for a lease
	ListActiveByLease(ctx context.Context, leaseID string) ([]*RecurringCharge, error)
}

// ChargeTypeRepository defines the read-only charge type contract used to
// attribute invoice lines to ledger categories
type ChargeTypeRepository interface {
	// GetByID retrieves a charge type by ID
	GetByID(ctx context.Context, id string) (*ChargeType, error)

	// GetByCode retrieves a charge type by its well-known code (e.g. RENT)
	GetByCode(ctx context.Context, code string) (*ChargeType, error)
}
