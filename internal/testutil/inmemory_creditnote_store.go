package testutil

import (
	"context"

	"github.com/propbase/billing/internal/domain/creditnote"
	ierr "github.com/propbase/billing/internal/errors"
)

// InMemoryCreditNoteStore implements creditnote.Repository
type InMemoryCreditNoteStore struct {
	*InMemoryStore[*creditnote.CreditNote]
}

func NewInMemoryCreditNoteStore() *InMemoryCreditNoteStore {
	return &InMemoryCreditNoteStore{
		InMemoryStore: NewInMemoryStore[*creditnote.CreditNote](),
	}
}

func copyCreditNote(note *creditnote.CreditNote) *creditnote.CreditNote {
	if note == nil {
		return nil
	}

	copied := *note
	copied.AppliedAt = copyTime(note.AppliedAt)

	if len(note.LineItems) > 0 {
		copied.LineItems = make([]*creditnote.CreditNoteLine, len(note.LineItems))
		for i, line := range note.LineItems {
			lineCopy := *line
			copied.LineItems[i] = &lineCopy
		}
	}

	return &copied
}

func (s *InMemoryCreditNoteStore) Create(ctx context.Context, note *creditnote.CreditNote) error {
	if note == nil {
		return ierr.NewError("credit note cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, note.ID, copyCreditNote(note))
}

func (s *InMemoryCreditNoteStore) GetWithLineItems(ctx context.Context, id string) (*creditnote.CreditNote, error) {
	note, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("credit note not found").
			WithHintf("credit note %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return copyCreditNote(note), nil
}

func (s *InMemoryCreditNoteStore) Update(ctx context.Context, note *creditnote.CreditNote) error {
	if note == nil {
		return ierr.NewError("credit note cannot be nil").
			Mark(ierr.ErrValidation)
	}

	stored, err := s.InMemoryStore.Get(ctx, note.ID)
	if err != nil {
		return ierr.NewError("credit note not found").
			WithHintf("credit note %s does not exist", note.ID).
			Mark(ierr.ErrNotFound)
	}
	if stored.Version != note.Version {
		return ierr.NewError("credit note was modified concurrently").
			WithHintf("credit note %s version %d does not match stored version %d", note.ID, note.Version, stored.Version).
			Mark(ierr.ErrVersionConflict)
	}

	updated := copyCreditNote(note)
	updated.Version = note.Version + 1
	if err := s.InMemoryStore.Update(ctx, note.ID, updated); err != nil {
		return err
	}
	note.Version = updated.Version
	return nil
}
