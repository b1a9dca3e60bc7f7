package storage

import (
	"context"
	"time"

	"crypto-strategy-lab/internal/domain"
)

// CandleStore provides access to daily candle storage.
type CandleStore interface {
	// InsertBulk adds candles for a symbol. Returns ErrDuplicateKey if any
	// (symbol, date) already exists; the whole batch fails.
	InsertBulk(ctx context.Context, symbol string, candles []*domain.Candle) error

	// GetBySymbol retrieves all candles for a symbol, ordered by date ASC.
	// Returns an empty slice when none exist.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.Candle, error)

	// GetByDateRange retrieves candles within [from, to] (inclusive),
	// ordered by date ASC.
	GetByDateRange(ctx context.Context, symbol string, from, to time.Time) ([]*domain.Candle, error)
}

// SummaryStore provides access to persisted backtest run summaries.
type SummaryStore interface {
	// Insert adds a run summary. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, s *domain.RunSummary) error

	// GetByRunID retrieves a summary by run ID. Returns ErrNotFound if it
	// does not exist.
	GetByRunID(ctx context.Context, runID string) (*domain.RunSummary, error)

	// GetBySymbol retrieves all summaries for a symbol, ordered by
	// created_at ASC, run_id ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.RunSummary, error)
}

// EquityStore provides access to per-run daily equity curves.
type EquityStore interface {
	// InsertBulk adds the equity points of one run.
	InsertBulk(ctx context.Context, runID string, points []domain.EquityPoint) error

	// GetByRunID retrieves the equity curve of a run, ordered by date ASC.
	// Returns an empty slice when the run has no stored curve.
	GetByRunID(ctx context.Context, runID string) ([]domain.EquityPoint, error)
}
