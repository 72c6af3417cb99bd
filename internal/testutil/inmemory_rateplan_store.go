package testutil

import (
	"context"

	"github.com/propbase/billing/internal/domain/tariff"
	ierr "github.com/propbase/billing/internal/errors"
)

// InMemoryRatePlanStore implements tariff.Repository
type InMemoryRatePlanStore struct {
	*InMemoryStore[*tariff.RatePlan]
}

func NewInMemoryRatePlanStore() *InMemoryRatePlanStore {
	return &InMemoryRatePlanStore{
		InMemoryStore: NewInMemoryStore[*tariff.RatePlan](),
	}
}

// CreateRatePlan seeds a rate plan into the store for test setup
func (s *InMemoryRatePlanStore) CreateRatePlan(ctx context.Context, p *tariff.RatePlan) error {
	if p == nil {
		return ierr.NewError("rate plan cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryRatePlanStore) GetWithSlabs(ctx context.Context, id string) (*tariff.RatePlan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("rate plan not found").
			WithHintf("rate plan %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}
