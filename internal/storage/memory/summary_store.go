package memory

import (
	"context"
	"sort"
	"sync"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/storage"
)

// SummaryStore is an in-memory implementation of storage.SummaryStore.
type SummaryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RunSummary // keyed by run_id
}

// NewSummaryStore creates a new in-memory summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{data: make(map[string]*domain.RunSummary)}
}

// Insert adds a run summary. Returns ErrDuplicateKey if run_id exists.
func (s *SummaryStore) Insert(_ context.Context, summary *domain.RunSummary) error {
	if summary == nil || summary.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[summary.RunID]; exists {
		return storage.ErrDuplicateKey
	}
	copied := *summary
	s.data[summary.RunID] = &copied
	return nil
}

// GetByRunID retrieves a summary by run ID.
func (s *SummaryStore) GetByRunID(_ context.Context, runID string) (*domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.data[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *summary
	return &copied, nil
}

// GetBySymbol retrieves all summaries for a symbol, ordered by created_at
// ASC, run_id ASC.
func (s *SummaryStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.RunSummary, 0)
	for _, summary := range s.data {
		if summary.Symbol != symbol {
			continue
		}
		copied := *summary
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].RunID < out[j].RunID
	})
	return out, nil
}

var _ storage.SummaryStore = (*SummaryStore)(nil)
