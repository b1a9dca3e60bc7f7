// Package main provides a unified service that runs all components together:
// - Ingestion (continuous): live kline stream appended to storage
// - Backtest (scheduled): full catalog run over the stored history
// - Reporting (scheduled): comparison markdown and CSV
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"crypto-strategy-lab/internal/backtest"
	"crypto-strategy-lab/internal/config"
	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/marketdata"
	"crypto-strategy-lab/internal/observability"
	"crypto-strategy-lab/internal/reporting"
	"crypto-strategy-lab/internal/storage"
	chstore "crypto-strategy-lab/internal/storage/clickhouse"
	"crypto-strategy-lab/internal/storage/migrations"
	pgstore "crypto-strategy-lab/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	cfg       *config.Config
	outputDir string

	backtestInterval time.Duration
	reportInterval   time.Duration

	candleStore  storage.CandleStore
	summaryStore storage.SummaryStore
	equityStore  storage.EquityStore
	runner       *backtest.Runner
	logger       zerolog.Logger

	// State
	mu              sync.Mutex
	started         time.Time
	lastBacktestRun time.Time
	lastReportRun   time.Time
	backtestRuns    int
	reportRuns      int
	backtestRunning bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	outputDir := flag.String("output-dir", "output", "Output directory for reports")
	backtestInterval := flag.Duration("backtest-interval", 6*time.Hour, "Catalog backtest interval")
	reportInterval := flag.Duration("report-interval", 6*time.Hour, "Report generation interval")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	if cfg.PostgresDSN == "" {
		logger.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()

		// Second signal forces exit
		sig = <-sigCh
		logger.Warn().Str("signal", sig.String()).Msg("forcing immediate shutdown")
		os.Exit(1)
	}()

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply postgres migrations")
	}

	var equityStore storage.EquityStore
	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to clickhouse")
		}
		defer conn.Close()
		equityStore = chstore.NewEquityStore(conn)
	}

	candleStore := pgstore.NewCandleStore(pool)
	summaryStore := pgstore.NewSummaryStore(pool)

	server := &Server{
		cfg:              cfg,
		outputDir:        *outputDir,
		backtestInterval: *backtestInterval,
		reportInterval:   *reportInterval,
		candleStore:      candleStore,
		summaryStore:     summaryStore,
		equityStore:      equityStore,
		logger:           logger,
		started:          time.Now(),
	}
	server.runner = backtest.NewRunner(backtest.RunnerOptions{
		CandleStore:  candleStore,
		SummaryStore: summaryStore,
		EquityStore:  equityStore,
		Workers:      cfg.Workers,
		Logger:       logger,
	})

	go server.startHTTPServer(cfg.ListenAddr)

	if err := server.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("shutdown complete")
}

// Run starts all components and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info().Str("symbol", s.cfg.Symbol).Msg("starting unified server")

	errCh := make(chan error, 3)

	go func() {
		if err := s.runIngestion(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("ingestion: %w", err)
		}
	}()

	go func() {
		if err := s.runBacktestScheduler(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("backtest scheduler: %w", err)
		}
	}()

	go func() {
		if err := s.runReportScheduler(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("report scheduler: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runIngestion follows the live kline stream and appends closed candles.
func (s *Server) runIngestion(ctx context.Context) error {
	follower, err := marketdata.NewKlineFollower(ctx, s.cfg.StreamURL, s.cfg.Symbol, nil, s.logger)
	if err != nil {
		return fmt.Errorf("connect kline stream: %w", err)
	}
	defer follower.Close()

	s.logger.Info().Str("symbol", s.cfg.Symbol).Msg("ingestion started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case candle, ok := <-follower.Candles():
			if !ok {
				return nil
			}
			err := s.candleStore.InsertBulk(ctx, s.cfg.Symbol, []*domain.Candle{candle})
			if errors.Is(err, storage.ErrDuplicateKey) {
				// Reconnects replay the current day's kline.
				s.logger.Debug().Time("date", candle.Date).Msg("candle already stored")
				continue
			}
			if err != nil {
				s.logger.Error().Err(err).Time("date", candle.Date).Msg("store live candle")
				continue
			}
			observability.DefaultMetrics.CandlesStored.Inc()
			observability.DefaultMetrics.LastSuccessfulIngestion.SetToCurrentTime()
		}
	}
}

// runBacktestScheduler reruns the full catalog on a fixed interval.
func (s *Server) runBacktestScheduler(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.backtestInterval).Msg("starting backtest scheduler")

	// Run immediately on start
	s.runBacktest(ctx)

	ticker := time.NewTicker(s.backtestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runBacktest(ctx)
		}
	}
}

func (s *Server) runBacktest(ctx context.Context) {
	s.mu.Lock()
	if s.backtestRunning {
		s.mu.Unlock()
		s.logger.Info().Msg("backtest already running, skipping")
		return
	}
	s.backtestRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.backtestRunning = false
		s.lastBacktestRun = time.Now()
		s.backtestRuns++
		s.mu.Unlock()
	}()

	cfgs := domain.DefaultCatalog()
	feeRate := s.cfg.FeeRate
	for i := range cfgs {
		cfgs[i].InitialCapital = s.cfg.InitialCapital
		cfgs[i].FeeRate = &feeRate
	}

	if _, err := s.runner.RunCatalog(ctx, s.cfg.Symbol, cfgs); err != nil {
		s.logger.Error().Err(err).Msg("catalog backtest failed")
	}
}

// runReportScheduler regenerates the comparison report on a fixed interval.
func (s *Server) runReportScheduler(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.reportInterval).Msg("starting report scheduler")

	// Give the first backtest a moment to land before the first report.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(1 * time.Minute):
	}
	s.runReport(ctx)

	ticker := time.NewTicker(s.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runReport(ctx)
		}
	}
}

func (s *Server) runReport(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.lastReportRun = time.Now()
		s.reportRuns++
		s.mu.Unlock()
	}()

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		s.logger.Error().Err(err).Msg("create output directory")
		return
	}

	gen := reporting.NewGenerator(s.summaryStore, s.equityStore)
	report, err := gen.Generate(ctx, s.cfg.Symbol)
	if err != nil {
		s.logger.Error().Err(err).Msg("generate report")
		return
	}

	mdPath := filepath.Join(s.outputDir, fmt.Sprintf("COMPARISON_%s.md", s.cfg.Symbol))
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		s.logger.Error().Err(err).Msg("write markdown report")
		return
	}
	observability.RecordReportGenerated("markdown")

	csvPath := filepath.Join(s.outputDir, fmt.Sprintf("COMPARISON_%s.csv", s.cfg.Symbol))
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.Rows)), 0o644); err != nil {
		s.logger.Error().Err(err).Msg("write csv report")
		return
	}
	observability.RecordReportGenerated("csv")

	s.logger.Info().Str("dir", s.outputDir).Msg("reports generated")
}

// startHTTPServer serves health, metrics, status, and the read-only API.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/api/summaries", s.handleSummaries)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/equity", s.handleEquity)

	s.logger.Info().Str("addr", addr).Msg("starting HTTP server")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Error().Err(err).Msg("HTTP server error")
	}
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status          string    `json:"status"`
	Symbol          string    `json:"symbol"`
	Uptime          string    `json:"uptime"`
	LastBacktestRun time.Time `json:"last_backtest_run,omitempty"`
	LastReportRun   time.Time `json:"last_report_run,omitempty"`
	BacktestRuns    int       `json:"backtest_runs"`
	ReportRuns      int       `json:"report_runs"`
	BacktestRunning bool      `json:"backtest_running"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:          "running",
		Symbol:          s.cfg.Symbol,
		Uptime:          time.Since(s.started).String(),
		LastBacktestRun: s.lastBacktestRun,
		LastReportRun:   s.lastReportRun,
		BacktestRuns:    s.backtestRuns,
		ReportRuns:      s.reportRuns,
		BacktestRunning: s.backtestRunning,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleSummaries returns the stored run summaries for a symbol.
func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		symbol = s.cfg.Symbol
	}

	summaries, err := s.summaryStore.GetBySymbol(r.Context(), symbol)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

// handleReport returns the comparison report for a symbol as JSON.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		symbol = s.cfg.Symbol
	}

	gen := reporting.NewGenerator(s.summaryStore, s.equityStore)
	report, err := gen.Generate(r.Context(), symbol)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// handleEquity returns the stored equity curve for a run.
func (s *Server) handleEquity(w http.ResponseWriter, r *http.Request) {
	if s.equityStore == nil {
		http.Error(w, "equity storage not configured", http.StatusNotFound)
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		http.Error(w, "run_id is required", http.StatusBadRequest)
		return
	}

	points, err := s.equityStore.GetByRunID(r.Context(), runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}
