// Package backtest simulates strategy execution against a daily price
// series: a single-threaded, deterministic walk that applies sell and buy
// signals with transaction fees and produces the portfolio's daily
// mark-to-market equity series.
package backtest

import (
	"errors"
	"fmt"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/strategy"
)

// Engine errors. Both are raised before the first simulated day, so a failed
// run never leaves a partially mutated portfolio behind.
var (
	ErrInsufficientData = errors.New("insufficient price history for strategy")
	ErrInvalidConfig    = errors.New("invalid backtest configuration")
)

// cashTolerance absorbs float drift when the configured capital was sliced
// into equal parts: the final scheduled DCA buy must not be skipped because
// the remaining cash is a few ulps short.
const cashTolerance = 1e-6

// Result is the output of one simulation.
type Result struct {
	Strategy    string
	Equity      []domain.EquityPoint
	Portfolio   *domain.Portfolio // final state, mark-to-market at the last date
	SkippedBuys int               // buy signals skipped for insufficient cash
}

// TradeCount returns the number of applied buy and sell events.
func (r *Result) TradeCount() int {
	return r.Portfolio.TradeCount()
}

// Run simulates one strategy configuration over the series. The series is
// treated as immutable; concurrent Run calls may share it freely as long as
// each call gets its own config.
func Run(series *domain.CandleSeries, cfg domain.StrategyConfig) (*Result, error) {
	if err := validate(series, cfg); err != nil {
		return nil, err
	}

	strat, err := strategy.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := strat.Prepare(series); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if series.Len() < strat.MinHistory() {
		return nil, fmt.Errorf("%w: %s needs %d days, series has %d",
			ErrInsufficientData, strat.Name(), strat.MinHistory(), series.Len())
	}

	fee := cfg.Fee()
	port := &domain.Portfolio{Cash: cfg.Capital()}
	result := &Result{
		Strategy:  strat.Name(),
		Equity:    make([]domain.EquityPoint, series.Len()),
		Portfolio: port,
	}

	for i, candle := range series.Candles {
		price := candle.Close
		d := strat.Evaluate(i, port)

		// Sell before buy: a rule-triggered exit must not wash against a
		// same-day entry.
		if d.Sell && port.Units > 0 {
			notional := port.Units * price
			port.Cash += notional * (1 - fee)
			port.FeesPaid += notional * fee
			port.Units = 0
			port.EntryPrices = nil
			port.SellCount++
		}

		amount := d.BuyAmount
		if d.AllIn {
			amount = port.Cash
		}
		if amount > 0 {
			if amount > port.Cash && amount-port.Cash <= cashTolerance {
				amount = port.Cash
			}
			if amount <= port.Cash {
				port.Units += amount * (1 - fee) / price
				port.Cash -= amount
				port.FeesPaid += amount * fee
				port.EntryPrices = append(port.EntryPrices, price)
				port.BuyCount++
			} else {
				// Expected once a capped strategy has deployed its capital.
				result.SkippedBuys++
			}
		}

		result.Equity[i] = domain.EquityPoint{Date: candle.Date, Value: port.Value(price)}
	}

	return result, nil
}

// validate fails fast on malformed input, before any simulation state exists.
func validate(series *domain.CandleSeries, cfg domain.StrategyConfig) error {
	if err := series.Validate(); err != nil {
		if errors.Is(err, domain.ErrEmptySeries) {
			return fmt.Errorf("%w: %v", ErrInsufficientData, err)
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.InitialCapital < 0 {
		return fmt.Errorf("%w: initial capital must not be negative", ErrInvalidConfig)
	}
	if fee := cfg.Fee(); fee < 0 || fee >= 1 {
		return fmt.Errorf("%w: fee rate %v outside [0, 1)", ErrInvalidConfig, fee)
	}
	return nil
}
