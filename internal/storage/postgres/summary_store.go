package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/storage"
)

// SummaryStore implements storage.SummaryStore using PostgreSQL.
type SummaryStore struct {
	pool *Pool
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(pool *Pool) *SummaryStore {
	return &SummaryStore{pool: pool}
}

var _ storage.SummaryStore = (*SummaryStore)(nil)

// Insert persists a backtest run summary. Returns storage.ErrDuplicateKey if
// a summary with the same run ID already exists.
func (s *SummaryStore) Insert(ctx context.Context, sum *domain.RunSummary) error {
	if sum == nil || sum.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO backtest_summaries (
			run_id, symbol, strategy, start_date, end_date, created_at,
			total_return_pct, cagr_pct, sharpe_ratio, max_drawdown_pct,
			volatility_pct, win_rate_pct, trade_count, final_value
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := s.pool.Exec(ctx, query,
		sum.RunID, sum.Symbol, sum.Metrics.Strategy,
		sum.StartDate.UTC(), sum.EndDate.UTC(), sum.CreatedAt.UTC(),
		sum.Metrics.TotalReturnPct, sum.Metrics.CAGRPct, sum.Metrics.SharpeRatio,
		sum.Metrics.MaxDrawdownPct, sum.Metrics.VolatilityPct, sum.Metrics.WinRatePct,
		sum.Metrics.TradeCount, sum.Metrics.FinalValue,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

// GetByRunID retrieves a summary by run ID. Returns storage.ErrNotFound if
// it does not exist.
func (s *SummaryStore) GetByRunID(ctx context.Context, runID string) (*domain.RunSummary, error) {
	query := selectSummaryColumns + ` WHERE run_id = $1`

	row := s.pool.QueryRow(ctx, query, runID)
	sum, err := scanSummaryRow(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get summary by run id: %w", err)
	}
	return sum, nil
}

// GetBySymbol retrieves all summaries for a symbol, ordered by created_at
// ASC, run_id ASC.
func (s *SummaryStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.RunSummary, error) {
	query := selectSummaryColumns + ` WHERE symbol = $1 ORDER BY created_at ASC, run_id ASC`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get summaries by symbol: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.RunSummary, 0)
	for rows.Next() {
		sum, err := scanSummaryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return out, nil
}

const selectSummaryColumns = `
	SELECT run_id, symbol, strategy, start_date, end_date, created_at,
		total_return_pct, cagr_pct, sharpe_ratio, max_drawdown_pct,
		volatility_pct, win_rate_pct, trade_count, final_value
	FROM backtest_summaries
`

func scanSummaryRow(row pgx.Row) (*domain.RunSummary, error) {
	var sum domain.RunSummary
	err := row.Scan(
		&sum.RunID, &sum.Symbol, &sum.Metrics.Strategy,
		&sum.StartDate, &sum.EndDate, &sum.CreatedAt,
		&sum.Metrics.TotalReturnPct, &sum.Metrics.CAGRPct, &sum.Metrics.SharpeRatio,
		&sum.Metrics.MaxDrawdownPct, &sum.Metrics.VolatilityPct, &sum.Metrics.WinRatePct,
		&sum.Metrics.TradeCount, &sum.Metrics.FinalValue,
	)
	if err != nil {
		return nil, err
	}
	sum.StartDate = sum.StartDate.UTC()
	sum.EndDate = sum.EndDate.UTC()
	sum.CreatedAt = sum.CreatedAt.UTC()
	return &sum, nil
}
