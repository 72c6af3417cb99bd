package testutil

import (
	"context"
	"time"

	"github.com/propbase/billing/internal/domain/invoice"
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

// copyInvoice returns a deep copy so callers never share state with the store
func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}

	copied := *inv
	copied.IssuedAt = copyTime(inv.IssuedAt)
	copied.PaidAt = copyTime(inv.PaidAt)
	copied.VoidedAt = copyTime(inv.VoidedAt)

	if len(inv.LineItems) > 0 {
		copied.LineItems = make([]*invoice.LineItem, len(inv.LineItems))
		for i, item := range inv.LineItems {
			itemCopy := *item
			copied.LineItems[i] = &itemCopy
		}
	}

	return &copied
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv))
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("invoice not found").
			WithHintf("invoice %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	copied := copyInvoice(inv)
	copied.LineItems = nil
	return copied, nil
}

func (s *InMemoryInvoiceStore) GetWithLineItems(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("invoice not found").
			WithHintf("invoice %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) GetDraftForPeriod(ctx context.Context, leaseID string, periodStart, periodEnd time.Time) (*invoice.Invoice, error) {
	matches, err := s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, inv *invoice.Invoice, _ interface{}) bool {
			return inv.LeaseID == leaseID &&
				inv.InvoiceStatus == types.InvoiceStatusDraft &&
				inv.PeriodStart.Equal(periodStart) &&
				inv.PeriodEnd.Equal(periodEnd)
		}, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("draft invoice not found").
			WithHintf("no draft invoice for lease %s in the given period", leaseID).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(matches[0]), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}

	stored, err := s.InMemoryStore.Get(ctx, inv.ID)
	if err != nil {
		return ierr.NewError("invoice not found").
			WithHintf("invoice %s does not exist", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	if stored.Version != inv.Version {
		return ierr.NewError("invoice was modified concurrently").
			WithHintf("invoice %s version %d does not match stored version %d", inv.ID, inv.Version, stored.Version).
			Mark(ierr.ErrVersionConflict)
	}

	updated := copyInvoice(inv)
	updated.Version = inv.Version + 1
	if err := s.InMemoryStore.Update(ctx, inv.ID, updated); err != nil {
		return err
	}
	inv.Version = updated.Version
	return nil
}
