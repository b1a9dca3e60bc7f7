package strategy

import (
	"crypto-strategy-lab/internal/domain"
)

// Decision is one day's verdict. The engine applies the sell before the buy,
// so a rule-triggered exit never washes against a same-day entry.
type Decision struct {
	// Sell liquidates the entire position at today's close.
	Sell bool
	// BuyAmount is the notional (quote currency) to spend at today's close;
	// zero means no buy. Ignored when AllIn is set.
	BuyAmount float64
	// AllIn spends all available cash instead of a fixed amount.
	AllIn bool
}

// Strategy walks a prepared daily series and produces buy/sell decisions.
// Implementations are stateful across the walk (crossover relations,
// running highs, calendar counters) and must be used for a single run only.
type Strategy interface {
	// Name returns the display name used in reports and persisted summaries.
	Name() string

	// MinHistory returns the minimum series length required before any
	// signal is defined. Shorter series fail validation before simulation.
	MinHistory() int

	// Prepare precomputes the indicator series for the walk.
	// Called exactly once, before the first Evaluate.
	Prepare(series *domain.CandleSeries) error

	// Evaluate returns the decision for day i. It must be called exactly
	// once per index, in order, with the portfolio state as of the start of
	// the day. Implementations read the portfolio but never mutate it.
	Evaluate(i int, p *domain.Portfolio) Decision
}
