package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/storage"
)

func testCandles() []*domain.Candle {
	return []*domain.Candle{
		{Date: day(2024, time.January, 1), Open: 100, High: 110, Low: 95, Close: 105, Volume: 1000},
		{Date: day(2024, time.January, 2), Open: 105, High: 120, Low: 104, Close: 118, Volume: 1500},
		{Date: day(2024, time.January, 3), Open: 118, High: 119, Low: 90, Close: 92, Volume: 2200},
	}
}

func TestCandleStore_InsertBulkAndGetBySymbol(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCandleStore(pool)

	err := store.InsertBulk(ctx, "BTCUSDT", testCandles())
	require.NoError(t, err)

	candles, err := store.GetBySymbol(ctx, "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, candles, 3)

	// Ordered by date ASC, dates normalized to UTC.
	assert.Equal(t, day(2024, time.January, 1), candles[0].Date)
	assert.Equal(t, day(2024, time.January, 3), candles[2].Date)
	assert.Equal(t, time.UTC, candles[0].Date.Location())
	assert.InDelta(t, 105.0, candles[0].Close, 1e-9)
	assert.InDelta(t, 2200.0, candles[2].Volume, 1e-9)
}

func TestCandleStore_InsertBulkDuplicateRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCandleStore(pool)

	require.NoError(t, store.InsertBulk(ctx, "BTCUSDT", testCandles()[:1]))

	// Batch contains one new and one conflicting candle; nothing may land.
	batch := []*domain.Candle{
		{Date: day(2024, time.February, 1), Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
		{Date: day(2024, time.January, 1), Open: 2, High: 2, Low: 2, Close: 2, Volume: 2},
	}
	err := store.InsertBulk(ctx, "BTCUSDT", batch)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	candles, err := store.GetBySymbol(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Len(t, candles, 1)
}

func TestCandleStore_SameDateDifferentSymbols(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCandleStore(pool)

	c := testCandles()[:1]
	require.NoError(t, store.InsertBulk(ctx, "BTCUSDT", c))
	require.NoError(t, store.InsertBulk(ctx, "ETHUSDT", c))

	btc, err := store.GetBySymbol(ctx, "BTCUSDT")
	require.NoError(t, err)
	eth, err := store.GetBySymbol(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.Len(t, btc, 1)
	assert.Len(t, eth, 1)
}

func TestCandleStore_GetByDateRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCandleStore(pool)

	require.NoError(t, store.InsertBulk(ctx, "BTCUSDT", testCandles()))

	// Inclusive on both ends.
	candles, err := store.GetByDateRange(ctx, "BTCUSDT",
		day(2024, time.January, 2), day(2024, time.January, 3))
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, day(2024, time.January, 2), candles[0].Date)
	assert.Equal(t, day(2024, time.January, 3), candles[1].Date)
}

func TestCandleStore_GetBySymbolEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	candles, err := NewCandleStore(pool).GetBySymbol(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestCandleStore_InsertBulkEmptyAndInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCandleStore(pool)

	assert.NoError(t, store.InsertBulk(ctx, "BTCUSDT", nil))
	assert.ErrorIs(t, store.InsertBulk(ctx, "", testCandles()), storage.ErrInvalidInput)
}
