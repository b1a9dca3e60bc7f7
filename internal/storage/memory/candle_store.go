package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/storage"
)

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Candle // keyed by (symbol, date)
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{data: make(map[string]*domain.Candle)}
}

func candleKey(symbol string, date time.Time) string {
	return fmt.Sprintf("%s|%s", symbol, date.UTC().Format("2006-01-02"))
}

// InsertBulk adds candles for a symbol. Fails the entire batch on any
// duplicate, existing or intra-batch.
func (s *CandleStore) InsertBulk(_ context.Context, symbol string, candles []*domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	if symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(candles))
	for _, c := range candles {
		if c == nil {
			return storage.ErrInvalidInput
		}
		key := candleKey(symbol, c.Date)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, c := range candles {
		copied := *c
		s.data[candleKey(symbol, c.Date)] = &copied
	}
	return nil
}

// GetBySymbol retrieves all candles for a symbol, ordered by date ASC.
func (s *CandleStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.Candle, error) {
	return s.GetByDateRange(ctx, symbol, time.Time{}, time.Time{})
}

// GetByDateRange retrieves candles within [from, to] (inclusive), ordered by
// date ASC. Zero bounds are open-ended.
func (s *CandleStore) GetByDateRange(_ context.Context, symbol string, from, to time.Time) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := symbol + "|"
	out := make([]*domain.Candle, 0)
	for key, c := range s.data {
		if len(key) < len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		if !from.IsZero() && c.Date.Before(from) {
			continue
		}
		if !to.IsZero() && c.Date.After(to) {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

var _ storage.CandleStore = (*CandleStore)(nil)
