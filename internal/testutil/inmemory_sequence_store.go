package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/propbase/billing/internal/types"
)

// InMemorySequenceStore implements sequence.Repository with an independent
// counter per (organization, sequence type) pair.
type InMemorySequenceStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewInMemorySequenceStore() *InMemorySequenceStore {
	return &InMemorySequenceStore{
		counters: make(map[string]int64),
	}
}

func (s *InMemorySequenceStore) NextValue(ctx context.Context, orgID string, seqType types.SequenceType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%s:%s", orgID, seqType)
	s.counters[key]++
	return s.counters[key], nil
}

// Clear resets all counters
func (s *InMemorySequenceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = make(map[string]int64)
}
