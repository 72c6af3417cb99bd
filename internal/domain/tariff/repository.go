package tariff

import (
	"context"
)

// Repository defines the read-only rate plan contract this core consumes
type Repository interface {
	// GetWithSlabs retrieves a rate plan by ID including its slabs
	GetWithSlabs(ctx context.Context, id string) (*RatePlan, error)
}
