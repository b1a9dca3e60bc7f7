package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"crypto-strategy-lab/internal/backtest"
	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/marketdata"
	"crypto-strategy-lab/internal/storage"
	chstore "crypto-strategy-lab/internal/storage/clickhouse"
	"crypto-strategy-lab/internal/storage/memory"
	"crypto-strategy-lab/internal/storage/migrations"
	pgstore "crypto-strategy-lab/internal/storage/postgres"
)

func main() {
	// Data selection
	symbol := flag.String("symbol", "BTCUSDT", "Trading pair symbol")
	startStr := flag.String("start", "", "Range start, YYYY-MM-DD (required)")
	endStr := flag.String("end", "", "Range end, YYYY-MM-DD (defaults to today)")
	providerURL := flag.String("provider-url", marketdata.DefaultBaseURL, "Market data API base URL")

	// Strategy selection
	strategyKind := flag.String("strategy", "", "Run only catalog entries of this kind (empty = full catalog)")
	workers := flag.Int("workers", 0, "Concurrent strategy simulations (0 = GOMAXPROCS)")

	// Capital
	capital := flag.Float64("capital", domain.DefaultInitialCapital, "Initial capital")
	feeRate := flag.Float64("fee-rate", domain.DefaultFeeRate, "Per-trade fee rate")

	// Storage
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage (results are not persisted)")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	}()

	// Create stores
	var candleStore storage.CandleStore = memory.NewCandleStore()
	var summaryStore storage.SummaryStore
	var equityStore storage.EquityStore

	if !*useMemory {
		if *postgresDSN == "" {
			logger.Fatal().Msg("--postgres-dsn is required when not using --use-memory")
		}

		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to postgres")
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("apply postgres migrations")
		}

		candleStore = pgstore.NewCandleStore(pool)
		summaryStore = pgstore.NewSummaryStore(pool)

		if *clickhouseDSN != "" {
			conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
			if err != nil {
				logger.Fatal().Err(err).Msg("connect to clickhouse")
			}
			defer conn.Close()
			equityStore = chstore.NewEquityStore(conn)
		}
	}

	// Fetch candles and store them for the runner.
	provider := marketdata.NewRESTClient(
		marketdata.WithBaseURL(*providerURL),
		marketdata.WithLogger(logger),
	)
	candles, err := provider.GetDailyCandles(ctx, *symbol, start, end)
	if err != nil {
		logger.Fatal().Err(err).Msg("fetch candles")
	}
	if err := candleStore.InsertBulk(ctx, *symbol, candles); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		logger.Fatal().Err(err).Msg("store candles")
	}

	cfgs := selectConfigs(*strategyKind, *capital, *feeRate)
	if len(cfgs) == 0 {
		logger.Fatal().Str("strategy", *strategyKind).Msg("no catalog entries match")
	}

	runner := backtest.NewRunner(backtest.RunnerOptions{
		CandleStore:  candleStore,
		SummaryStore: summaryStore,
		EquityStore:  equityStore,
		Workers:      *workers,
		Logger:       logger,
	})

	report, err := runner.RunCatalog(ctx, *symbol, cfgs)
	if err != nil {
		logger.Fatal().Err(err).Msg("backtest failed")
	}

	if *outputJSON {
		output, _ := json.MarshalIndent(report.Summaries, "", "  ")
		fmt.Println(string(output))
	} else {
		printSummaries(report.Summaries)
	}
}

// selectConfigs filters the default catalog by strategy kind and applies the
// capital settings to every config.
func selectConfigs(kind string, capital, feeRate float64) []domain.StrategyConfig {
	kind = strings.ToUpper(kind)

	var cfgs []domain.StrategyConfig
	for _, cfg := range domain.DefaultCatalog() {
		if kind != "" && string(cfg.Kind) != kind {
			continue
		}
		cfg.InitialCapital = capital
		cfg.FeeRate = &feeRate
		cfgs = append(cfgs, cfg)
	}
	return cfgs
}

// printSummaries outputs a human-readable comparison table.
func printSummaries(summaries []*domain.RunSummary) {
	fmt.Println()
	fmt.Println("=== Backtest Results ===")
	fmt.Printf("%-28s %12s %10s %8s %10s %8s %12s\n",
		"Strategy", "Return", "CAGR", "Sharpe", "MaxDD", "Trades", "Final Value")
	for _, s := range summaries {
		m := s.Metrics
		fmt.Printf("%-28s %11.2f%% %9.2f%% %8.2f %9.2f%% %8d %12.2f\n",
			m.Strategy, m.TotalReturnPct, m.CAGRPct, m.SharpeRatio,
			m.MaxDrawdownPct, m.TradeCount, m.FinalValue)
	}
}
