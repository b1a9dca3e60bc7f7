package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/idhash"
	"crypto-strategy-lab/internal/metrics"
	"crypto-strategy-lab/internal/observability"
	"crypto-strategy-lab/internal/storage"
)

// Runner coordinates the persistence-backed backtest flow:
// load candles → simulate catalog → compute metrics → store summaries and
// equity curves.
type Runner struct {
	candles   storage.CandleStore
	summaries storage.SummaryStore
	equity    storage.EquityStore

	workers int
	logger  zerolog.Logger
	now     func() time.Time
}

// RunnerOptions configures a Runner. CandleStore is required; SummaryStore
// and EquityStore are optional: when nil, results are returned but not
// persisted.
type RunnerOptions struct {
	CandleStore  storage.CandleStore
	SummaryStore storage.SummaryStore
	EquityStore  storage.EquityStore

	Workers int // 0 means GOMAXPROCS
	Logger  zerolog.Logger
	Now     func() time.Time // defaults to time.Now
}

// NewRunner creates a new Runner.
func NewRunner(opts RunnerOptions) *Runner {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		candles:   opts.CandleStore,
		summaries: opts.SummaryStore,
		equity:    opts.EquityStore,
		workers:   opts.Workers,
		logger:    opts.Logger,
		now:       now,
	}
}

// RunReport is the output of one catalog run against a symbol.
type RunReport struct {
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
	Summaries []*domain.RunSummary
	Results   []*Result
}

// RunCatalog loads the symbol's candles, simulates every configuration, and
// persists each run. Runs that already exist (same run ID) are skipped, not
// rewritten. Summaries keep the catalog order.
func (r *Runner) RunCatalog(ctx context.Context, symbol string, cfgs []domain.StrategyConfig) (*RunReport, error) {
	started := r.now()

	series, err := r.loadSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	startDate := series.Candles[0].Date
	endDate := series.Candles[series.Len()-1].Date

	r.logger.Info().
		Str("symbol", symbol).
		Int("days", series.Len()).
		Int("strategies", len(cfgs)).
		Msg("running catalog backtest")

	results, err := RunAll(series, cfgs, r.workers)
	if err != nil {
		return nil, fmt.Errorf("run catalog: %w", err)
	}

	report := &RunReport{
		Symbol:    symbol,
		StartDate: startDate,
		EndDate:   endDate,
		Results:   results,
	}

	for _, res := range results {
		observability.RecordBacktestRun(res.Strategy)

		sum := &domain.RunSummary{
			RunID:     idhash.ComputeRunID(symbol, res.Strategy, startDate, endDate),
			Symbol:    symbol,
			StartDate: startDate,
			EndDate:   endDate,
			CreatedAt: r.now().UTC(),
			Metrics:   *metrics.Compute(res.Strategy, res.Equity, res.TradeCount()),
		}
		report.Summaries = append(report.Summaries, sum)

		if err := r.persist(ctx, sum, res.Equity); err != nil {
			return nil, fmt.Errorf("persist run %s: %w", res.Strategy, err)
		}
	}

	observability.DefaultMetrics.BatchDuration.Observe(r.now().Sub(started).Seconds())
	observability.DefaultMetrics.LastSuccessfulBatch.SetToCurrentTime()

	r.logger.Info().
		Str("symbol", symbol).
		Int("runs", len(report.Summaries)).
		Dur("elapsed", r.now().Sub(started)).
		Msg("catalog backtest complete")

	return report, nil
}

// RunOne loads the symbol's candles and simulates a single configuration,
// persisting the summary and equity curve.
func (r *Runner) RunOne(ctx context.Context, symbol string, cfg domain.StrategyConfig) (*domain.RunSummary, *Result, error) {
	report, err := r.RunCatalog(ctx, symbol, []domain.StrategyConfig{cfg})
	if err != nil {
		return nil, nil, err
	}
	return report.Summaries[0], report.Results[0], nil
}

func (r *Runner) loadSeries(ctx context.Context, symbol string) (*domain.CandleSeries, error) {
	candles, err := r.candles.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load candles for %s: %w", symbol, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: no candles stored for %s", ErrInsufficientData, symbol)
	}
	series, err := domain.NewCandleSeries(symbol, candles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return series, nil
}

func (r *Runner) persist(ctx context.Context, sum *domain.RunSummary, equity []domain.EquityPoint) error {
	if r.summaries == nil {
		return nil
	}

	err := r.summaries.Insert(ctx, sum)
	switch {
	case err == nil:
		observability.DefaultMetrics.SummariesStored.Inc()
	case isDuplicate(err):
		// Same symbol, strategy, and date range ran before; keep the stored run.
		r.logger.Debug().Str("run_id", sum.RunID).Msg("summary exists, skipping")
		return nil
	default:
		return fmt.Errorf("insert summary: %w", err)
	}

	if r.equity == nil {
		return nil
	}
	if err := r.equity.InsertBulk(ctx, sum.RunID, equity); err != nil && !isDuplicate(err) {
		return fmt.Errorf("insert equity curve: %w", err)
	}
	return nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, storage.ErrDuplicateKey)
}
