package testutil

import (
	"context"

	"github.com/propbase/billing/internal/domain/lease"
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/types"
)

// InMemoryLeaseStore implements lease.Repository
type InMemoryLeaseStore struct {
	*InMemoryStore[*lease.Lease]
}

func NewInMemoryLeaseStore() *InMemoryLeaseStore {
	return &InMemoryLeaseStore{
		InMemoryStore: NewInMemoryStore[*lease.Lease](),
	}
}

// CreateLease seeds a lease into the store for test setup
func (s *InMemoryLeaseStore) CreateLease(ctx context.Context, l *lease.Lease) error {
	if l == nil {
		return ierr.NewError("lease cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, l.ID, l)
}

func (s *InMemoryLeaseStore) GetWithTerms(ctx context.Context, id string) (*lease.Lease, error) {
	l, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("lease not found").
			WithHintf("lease %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return l, nil
}

func (s *InMemoryLeaseStore) ListActive(ctx context.Context) ([]*lease.Lease, error) {
	orgID := types.GetOrganizationID(ctx)
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, l *lease.Lease, _ interface{}) bool {
			return l.OrganizationID == orgID && l.LeaseStatus == types.LeaseStatusActive
		},
		func(i, j *lease.Lease) bool {
			return i.ID < j.ID
		})
}
