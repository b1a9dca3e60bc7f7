package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/marketdata"
	"crypto-strategy-lab/internal/observability"
	"crypto-strategy-lab/internal/storage"
	"crypto-strategy-lab/internal/storage/migrations"
	pgstore "crypto-strategy-lab/internal/storage/postgres"
)

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "Trading pair symbol")
	startStr := flag.String("start", "", "Backfill start, YYYY-MM-DD (required)")
	endStr := flag.String("end", "", "Backfill end, YYYY-MM-DD (defaults to today)")

	providerURL := flag.String("provider-url", marketdata.DefaultBaseURL, "Market data API base URL")
	streamURL := flag.String("stream-url", "wss://stream.binance.com:9443", "Kline stream base URL")
	follow := flag.Bool("follow", false, "Keep following the live kline stream after backfill")

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for the candle cache (optional)")

	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *startStr == "" {
		logger.Fatal().Msg("--start is required")
	}
	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid --start")
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if *endStr != "" {
		end, err = time.Parse("2006-01-02", *endStr)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid --end")
		}
	}
	if *postgresDSN == "" {
		logger.Fatal().Msg("--postgres-dsn is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	}()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply postgres migrations")
	}
	candleStore := pgstore.NewCandleStore(pool)

	var provider marketdata.Provider = marketdata.NewRESTClient(
		marketdata.WithBaseURL(*providerURL),
		marketdata.WithLogger(logger),
	)
	if *redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: *redisAddr})
		defer client.Close()
		provider = marketdata.NewCachedProvider(provider, client, 0, logger)
	}

	logger.Info().
		Str("symbol", *symbol).
		Time("start", start).
		Time("end", end).
		Msg("backfilling candles")

	candles, err := provider.GetDailyCandles(ctx, *symbol, start, end)
	if err != nil {
		logger.Fatal().Err(err).Msg("fetch candles")
	}

	if err := candleStore.InsertBulk(ctx, *symbol, candles); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			logger.Warn().Msg("range already ingested, nothing stored")
		} else {
			logger.Fatal().Err(err).Msg("store candles")
		}
	} else {
		observability.DefaultMetrics.CandlesStored.Add(float64(len(candles)))
		logger.Info().Int("candles", len(candles)).Msg("backfill complete")
	}
	observability.DefaultMetrics.LastSuccessfulIngestion.SetToCurrentTime()

	if !*follow {
		return
	}

	followStream(ctx, logger, *streamURL, *symbol, candleStore)
}

// followStream appends live closed candles until the context is cancelled.
func followStream(ctx context.Context, logger zerolog.Logger, streamURL, symbol string, candleStore storage.CandleStore) {
	follower, err := marketdata.NewKlineFollower(ctx, streamURL, symbol, nil, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect kline stream")
	}
	defer follower.Close()

	logger.Info().Str("symbol", symbol).Msg("following live kline stream")

	for {
		select {
		case <-ctx.Done():
			return
		case candle, ok := <-follower.Candles():
			if !ok {
				return
			}
			err := candleStore.InsertBulk(ctx, symbol, []*domain.Candle{candle})
			switch {
			case errors.Is(err, storage.ErrDuplicateKey):
				logger.Debug().Time("date", candle.Date).Msg("candle already stored")
			case err != nil:
				logger.Error().Err(err).Time("date", candle.Date).Msg("store live candle")
			default:
				observability.DefaultMetrics.CandlesStored.Inc()
				logger.Info().
					Time("date", candle.Date).
					Float64("close", candle.Close).
					Msg("stored live candle")
			}
		}
	}
}
