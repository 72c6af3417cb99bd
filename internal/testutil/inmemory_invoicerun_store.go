package testutil

import (
	"context"

	"github.com/propbase/billing/internal/domain/invoicerun"
	ierr "github.com/propbase/billing/internal/errors"
)

// InMemoryInvoiceRunStore implements invoicerun.Repository
type InMemoryInvoiceRunStore struct {
	*InMemoryStore[*invoicerun.InvoiceRun]
}

func NewInMemoryInvoiceRunStore() *InMemoryInvoiceRunStore {
	return &InMemoryInvoiceRunStore{
		InMemoryStore: NewInMemoryStore[*invoicerun.InvoiceRun](),
	}
}

func (s *InMemoryInvoiceRunStore) Create(ctx context.Context, run *invoicerun.InvoiceRun) error {
	if run == nil {
		return ierr.NewError("invoice run cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, run.ID, run)
}

func (s *InMemoryInvoiceRunStore) Get(ctx context.Context, id string) (*invoicerun.InvoiceRun, error) {
	run, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("invoice run not found").
			WithHintf("invoice run %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return run, nil
}
