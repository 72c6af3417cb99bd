package testutil

import (
	"context"

	"github.com/propbase/billing/internal/domain/charge"
	ierr "github.com/propbase/billing/internal/errors"
)

// InMemoryChargeStore implements charge.Repository
type InMemoryChargeStore struct {
	*InMemoryStore[*charge.RecurringCharge]
}

func NewInMemoryChargeStore() *InMemoryChargeStore {
	return &InMemoryChargeStore{
		InMemoryStore: NewInMemoryStore[*charge.RecurringCharge](),
	}
}

// CreateCharge seeds a recurring charge into the store for test setup
func (s *InMemoryChargeStore) CreateCharge(ctx context.Context, c *charge.RecurringCharge) error {
	if c == nil {
		return ierr.NewError("charge cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, c.ID, c)
}

func (s *InMemoryChargeStore) ListActiveByLease(ctx context.Context, leaseID string) ([]*charge.RecurringCharge, error) {
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, c *charge.RecurringCharge, _ interface{}) bool {
			return c.LeaseID == leaseID && c.IsActive
		},
		func(i, j *charge.RecurringCharge) bool {
			return i.ID < j.ID
		})
}

// InMemoryChargeTypeStore implements charge.ChargeTypeRepository
type InMemoryChargeTypeStore struct {
	*InMemoryStore[*charge.ChargeType]
}

func NewInMemoryChargeTypeStore() *InMemoryChargeTypeStore {
	return &InMemoryChargeTypeStore{
		InMemoryStore: NewInMemoryStore[*charge.ChargeType](),
	}
}

// CreateChargeType seeds a charge type into the store for test setup
func (s *InMemoryChargeTypeStore) CreateChargeType(ctx context.Context, ct *charge.ChargeType) error {
	if ct == nil {
		return ierr.NewError("charge type cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, ct.ID, ct)
}

func (s *InMemoryChargeTypeStore) GetByID(ctx context.Context, id string) (*charge.ChargeType, error) {
	ct, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("charge type not found").
			WithHintf("charge type %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return ct, nil
}

func (s *InMemoryChargeTypeStore) GetByCode(ctx context.Context, code string) (*charge.ChargeType, error) {
	matches, err := s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, ct *charge.ChargeType, _ interface{}) bool {
			return ct.Code == code
		}, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("charge type not found").
			WithHintf("no charge type with code %s", code).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}
