package sequence

import (
	"context"

	"github.com/propbase/billing/internal/types"
)

// Repository is the externally owned atomic number sequence. Each
// (organization, sequence type) pair is an independent monotonically
// increasing counter. All serialization happens inside the implementation;
// this core treats NextValue as opaque and atomic and performs no locking of
// its own.
type Repository interface {
	// NextValue atomically increments and returns the counter for the given
	// organization and sequence type
	NextValue(ctx context.Context, orgID string, seqType types.SequenceType) (int64, error)
}
