package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"crypto-strategy-lab/internal/domain"
)

// DefaultCacheTTL is how long a cached candle range stays fresh. Daily
// candles only change once a day, so a long TTL is safe.
const DefaultCacheTTL = 6 * time.Hour

// CachedProvider wraps a Provider with a Redis read-through cache keyed by
// symbol and range. Cache failures degrade to the underlying provider.
type CachedProvider struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedProvider creates a read-through cache around inner. A zero ttl
// means DefaultCacheTTL.
func NewCachedProvider(inner Provider, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedProvider{inner: inner, client: client, ttl: ttl, logger: logger}
}

var _ Provider = (*CachedProvider)(nil)

// GetDailyCandles returns cached candles when present, otherwise fetches
// from the underlying provider and stores the result.
func (p *CachedProvider) GetDailyCandles(ctx context.Context, symbol string, start, end time.Time) ([]*domain.Candle, error) {
	key := cacheKey(symbol, start, end)

	cached, err := p.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var candles []*domain.Candle
		if err := json.Unmarshal(cached, &candles); err == nil {
			return candles, nil
		}
		// Corrupt entry: drop it and fall through to the provider.
		p.client.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		p.logger.Warn().Err(err).Str("key", key).Msg("candle cache read failed")
	}

	candles, err := p.inner.GetDailyCandles(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(candles); err == nil {
		if err := p.client.Set(ctx, key, data, p.ttl).Err(); err != nil {
			p.logger.Warn().Err(err).Str("key", key).Msg("candle cache write failed")
		}
	}

	return candles, nil
}

func cacheKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("candles:%s:%s:%s",
		symbol,
		start.UTC().Format("2006-01-02"),
		end.UTC().Format("2006-01-02"),
	)
}
