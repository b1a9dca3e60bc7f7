package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/observability"
)

// StreamConfig configures the kline stream follower.
type StreamConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// KlineFollower subscribes to a daily kline WebSocket stream and delivers
// closed candles on a channel. The connection reconnects automatically with
// exponential backoff.
type KlineFollower struct {
	endpoint string
	symbol   string
	config   StreamConfig
	logger   zerolog.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	out  chan *domain.Candle
	done chan struct{}
	wg   sync.WaitGroup
}

// NewKlineFollower connects to the endpoint's daily kline stream for symbol.
// Endpoint is the stream base, e.g. wss://stream.binance.com:9443.
func NewKlineFollower(ctx context.Context, endpoint, symbol string, config *StreamConfig, logger zerolog.Logger) (*KlineFollower, error) {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}

	f := &KlineFollower{
		endpoint: endpoint,
		symbol:   symbol,
		config:   cfg,
		logger:   logger,
		out:      make(chan *domain.Candle, 64),
		done:     make(chan struct{}),
	}

	if err := f.connect(ctx); err != nil {
		return nil, err
	}

	f.wg.Add(1)
	go f.readLoop()

	f.wg.Add(1)
	go f.pingLoop()

	return f, nil
}

// Candles returns the channel of closed daily candles. The channel is closed
// when the follower shuts down.
func (f *KlineFollower) Candles() <-chan *domain.Candle {
	return f.out
}

// Close shuts the stream down.
func (f *KlineFollower) Close() error {
	if f.closed.Swap(true) {
		return nil // Already closed
	}

	close(f.done)

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		f.conn.Close()
	}
	f.connMu.Unlock()

	f.wg.Wait()
	close(f.out)
	return nil
}

// streamURL builds the combined stream path for the symbol's daily klines.
func (f *KlineFollower) streamURL() string {
	return fmt.Sprintf("%s/ws/%s@kline_1d", f.endpoint, strings.ToLower(f.symbol))
}

func (f *KlineFollower) connect(ctx context.Context) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, f.streamURL(), nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	f.conn = conn
	return nil
}

// readLoop reads kline events and reconnects on failure.
func (f *KlineFollower) readLoop() {
	defer f.wg.Done()

	delay := f.config.ReconnectDelay

	for !f.closed.Load() {
		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()

		if conn == nil {
			if !f.sleep(delay) {
				return
			}
			delay = f.nextDelay(delay)
			f.reconnect()
			continue
		}

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if f.closed.Load() {
				return
			}
			f.logger.Warn().Err(err).Str("symbol", f.symbol).Msg("kline stream read failed")

			f.connMu.Lock()
			f.conn.Close()
			f.conn = nil
			f.connMu.Unlock()
			continue
		}

		// Reset delay on successful read
		delay = f.config.ReconnectDelay

		f.handleMessage(message)
	}
}

func (f *KlineFollower) reconnect() {
	if f.closed.Load() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := f.connect(ctx); err != nil {
		f.logger.Warn().Err(err).Msg("kline stream reconnect failed")
		return
	}
	observability.DefaultMetrics.WSReconnects.Inc()
	f.logger.Info().Str("symbol", f.symbol).Msg("kline stream reconnected")
}

// sleep waits for d unless the follower shuts down first.
func (f *KlineFollower) sleep(d time.Duration) bool {
	select {
	case <-f.done:
		return false
	case <-time.After(d):
		return true
	}
}

func (f *KlineFollower) nextDelay(d time.Duration) time.Duration {
	d *= 2
	if d > f.config.MaxReconnectDelay {
		d = f.config.MaxReconnectDelay
	}
	return d
}

// handleMessage parses a kline event and forwards the candle once it closes.
func (f *KlineFollower) handleMessage(message []byte) {
	var event klineEvent
	if err := json.Unmarshal(message, &event); err != nil {
		f.logger.Debug().Err(err).Msg("skip malformed stream message")
		return
	}
	if event.EventType != "kline" || !event.Kline.Closed {
		return
	}

	candle, err := event.Kline.toCandle()
	if err != nil {
		f.logger.Warn().Err(err).Msg("skip unparseable kline")
		return
	}

	select {
	case f.out <- candle:
	case <-f.done:
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (f *KlineFollower) pingLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.connMu.Lock()
			if f.conn != nil {
				f.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
				if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			f.connMu.Unlock()
		}
	}
}

// Stream message types

type klineEvent struct {
	EventType string       `json:"e"`
	Symbol    string       `json:"s"`
	Kline     klinePayload `json:"k"`
}

type klinePayload struct {
	OpenTime int64  `json:"t"`
	Open     string `json:"o"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Close    string `json:"c"`
	Volume   string `json:"v"`
	Closed   bool   `json:"x"`
}

func (k klinePayload) toCandle() (*domain.Candle, error) {
	c := &domain.Candle{Date: time.UnixMilli(k.OpenTime).UTC()}

	fields := []struct {
		dst  *float64
		name string
		raw  string
	}{
		{&c.Open, "open", k.Open},
		{&c.High, "high", k.High},
		{&c.Low, "low", k.Low},
		{&c.Close, "close", k.Close},
		{&c.Volume, "volume", k.Volume},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return c, nil
}
