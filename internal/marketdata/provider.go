// Package marketdata fetches daily OHLCV candles from exchange APIs.
package marketdata

import (
	"context"
	"errors"
	"time"

	"crypto-strategy-lab/internal/domain"
)

// ErrNoData indicates the provider returned no candles for the requested
// symbol and range.
var ErrNoData = errors.New("no market data for symbol")

// Provider retrieves daily candles for a symbol.
type Provider interface {
	// GetDailyCandles retrieves daily candles within [start, end] (inclusive),
	// ordered by date ASC. Returns ErrNoData when the range is empty.
	GetDailyCandles(ctx context.Context, symbol string, start, end time.Time) ([]*domain.Candle, error)
}
