package memory

import (
	"context"
	"sync"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/storage"
)

// EquityStore is an in-memory implementation of storage.EquityStore.
type EquityStore struct {
	mu   sync.RWMutex
	data map[string][]domain.EquityPoint // keyed by run_id
}

// NewEquityStore creates a new in-memory equity store.
func NewEquityStore() *EquityStore {
	return &EquityStore{data: make(map[string][]domain.EquityPoint)}
}

// InsertBulk adds the equity points of one run. Returns ErrDuplicateKey if
// the run already has a stored curve.
func (s *EquityStore) InsertBulk(_ context.Context, runID string, points []domain.EquityPoint) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[runID]; exists {
		return storage.ErrDuplicateKey
	}
	copied := make([]domain.EquityPoint, len(points))
	copy(copied, points)
	s.data[runID] = copied
	return nil
}

// GetByRunID retrieves the equity curve of a run, ordered by date ASC.
func (s *EquityStore) GetByRunID(_ context.Context, runID string) ([]domain.EquityPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points, ok := s.data[runID]
	if !ok {
		return []domain.EquityPoint{}, nil
	}
	copied := make([]domain.EquityPoint, len(points))
	copy(copied, points)
	return copied, nil
}

var _ storage.EquityStore = (*EquityStore)(nil)
