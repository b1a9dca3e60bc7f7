package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.binance.com"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultRateLimit   = 10 // requests per second
	DefaultKlinesLimit = 1000
)

// RESTClient implements Provider against a Binance-compatible klines API.
type RESTClient struct {
	baseURL    string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration
	logger     zerolog.Logger
}

// RESTOption configures RESTClient.
type RESTOption func(*RESTClient)

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) RESTOption {
	return func(c *RESTClient) {
		c.baseURL = u
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) RESTOption {
	return func(c *RESTClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) RESTOption {
	return func(c *RESTClient) {
		c.maxRetries = n
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) RESTOption {
	return func(c *RESTClient) {
		c.client = client
	}
}

// WithRateLimit sets the client-side request rate (requests per second).
func WithRateLimit(rps int) RESTOption {
	return func(c *RESTClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) RESTOption {
	return func(c *RESTClient) {
		c.logger = logger
	}
}

// NewRESTClient creates a new klines REST client.
func NewRESTClient(opts ...RESTOption) *RESTClient {
	c := &RESTClient{
		baseURL:    DefaultBaseURL,
		client:     &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		maxDelay:   DefaultMaxDelay,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Provider = (*RESTClient)(nil)

// GetDailyCandles retrieves daily klines within [start, end], paginating in
// chunks of 1000 rows, the API's maximum page size.
func (c *RESTClient) GetDailyCandles(ctx context.Context, symbol string, start, end time.Time) ([]*domain.Candle, error) {
	startMs := start.UTC().UnixMilli()
	endMs := end.UTC().UnixMilli()
	if endMs < startMs {
		return nil, fmt.Errorf("%w: end before start", ErrNoData)
	}

	var candles []*domain.Candle
	for {
		page, err := c.fetchKlines(ctx, symbol, startMs, endMs)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		candles = append(candles, page...)
		if len(page) < DefaultKlinesLimit {
			break
		}
		// Next page starts the day after the last candle received.
		startMs = page[len(page)-1].Date.Add(24 * time.Hour).UnixMilli()
		if startMs > endMs {
			break
		}
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	observability.RecordCandlesIngested(len(candles))
	return candles, nil
}

// fetchKlines performs one paginated request with retries and backoff.
func (c *RESTClient) fetchKlines(ctx context.Context, symbol string, startMs, endMs int64) ([]*domain.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1d")
	q.Set("startTime", strconv.FormatInt(startMs, 10))
	q.Set("endTime", strconv.FormatInt(endMs, 10))
	q.Set("limit", strconv.Itoa(DefaultKlinesLimit))
	endpoint := c.baseURL + "/api/v3/klines?" + q.Encode()

	var candles []*domain.Candle
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		started := time.Now()
		page, err := c.doRequest(ctx, endpoint)
		observability.DefaultMetrics.ProviderLatency.WithLabelValues("rest").Observe(time.Since(started).Seconds())
		if err != nil {
			observability.DefaultMetrics.ProviderRequests.WithLabelValues("rest", "error").Inc()
			c.logger.Warn().Err(err).Str("symbol", symbol).Msg("klines request failed")
			return err
		}

		observability.DefaultMetrics.ProviderRequests.WithLabelValues("rest", "ok").Inc()
		candles = page
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ExponentialBackOff{
		InitialInterval:     c.retryDelay,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         c.maxDelay,
		MaxElapsedTime:      0,
		Clock:               backoff.SystemClock,
	}, uint64(c.maxRetries)), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("fetch klines for %s: %w", symbol, err)
	}
	return candles, nil
}

func (c *RESTClient) doRequest(ctx context.Context, endpoint string) ([]*domain.Candle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited (429)")
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("server error %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}

	return parseKlines(body)
}

// parseKlines converts the API's positional kline arrays into candles.
// Row layout: [openTime, open, high, low, close, volume, closeTime, ...];
// prices and volume arrive as strings.
func parseKlines(body []byte) ([]*domain.Candle, error) {
	var rows [][]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("unmarshal klines: %w", err))
	}

	candles := make([]*domain.Candle, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, backoff.Permanent(fmt.Errorf("kline row %d too short: %d fields", i, len(row)))
		}

		openTime, ok := row[0].(float64)
		if !ok {
			return nil, backoff.Permanent(fmt.Errorf("kline row %d: open time is not a number", i))
		}

		c := &domain.Candle{Date: time.UnixMilli(int64(openTime)).UTC()}
		fields := []struct {
			dst  *float64
			name string
			idx  int
		}{
			{&c.Open, "open", 1},
			{&c.High, "high", 2},
			{&c.Low, "low", 3},
			{&c.Close, "close", 4},
			{&c.Volume, "volume", 5},
		}
		for _, f := range fields {
			v, err := parsePriceField(row[f.idx])
			if err != nil {
				return nil, backoff.Permanent(fmt.Errorf("kline row %d: parse %s: %w", i, f.name, err))
			}
			*f.dst = v
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func parsePriceField(v interface{}) (float64, error) {
	switch t := v.(type) {
	case string:
		return strconv.ParseFloat(t, 64)
	case float64:
		return t, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
