package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/storage"
)

// CandleStore implements storage.CandleStore using PostgreSQL.
type CandleStore struct {
	pool *Pool
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(pool *Pool) *CandleStore {
	return &CandleStore{pool: pool}
}

var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk adds candles for a symbol atomically. The whole batch fails on
// any duplicate (symbol, date).
func (s *CandleStore) InsertBulk(ctx context.Context, symbol string, candles []*domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	if symbol == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO candles (symbol, date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, c := range candles {
		_, err := tx.Exec(ctx, query,
			symbol, c.Date.UTC(), c.Open, c.High, c.Low, c.Close, c.Volume,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert candle in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetBySymbol retrieves all candles for a symbol, ordered by date ASC.
func (s *CandleStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.Candle, error) {
	query := `
		SELECT date, open, high, low, close, volume
		FROM candles
		WHERE symbol = $1
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get candles by symbol: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// GetByDateRange retrieves candles within [from, to] (inclusive), ordered by
// date ASC.
func (s *CandleStore) GetByDateRange(ctx context.Context, symbol string, from, to time.Time) ([]*domain.Candle, error) {
	query := `
		SELECT date, open, high, low, close, volume
		FROM candles
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("get candles by date range: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

func scanCandles(rows pgx.Rows) ([]*domain.Candle, error) {
	out := make([]*domain.Candle, 0)
	for rows.Next() {
		var c domain.Candle
		if err := rows.Scan(&c.Date, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		c.Date = c.Date.UTC()
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candles: %w", err)
	}
	return out, nil
}
