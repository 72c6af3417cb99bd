package creditnote

import (
	"context"
)

// Repository defines the interface for credit note persistence. Update is
// optimistic, keyed by the note's version token.
type Repository interface {
	// Create persists a new credit note with its lines
	Create(ctx context.Context, note *CreditNote) error

	// GetWithLineItems retrieves a credit note by ID including its lines
	GetWithLineItems(ctx context.Context, id string) (*CreditNote, error)

	// Update replaces the credit note, guarded by its version token
	Update(ctx context.Context, note *CreditNote) error
}
