package strategy

import (
	"fmt"
	"math"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/indicator"
)

// Tolerance around the support level that still counts as touching it.
const fibTouchTolerance = 0.02

// FibSupport buys a fixed unit when the close comes within 2% of the
// support level low + level*(high-low) over a rolling lookback. The level is
// measured upward from the rolling low (see indicator.FibonacciSupport); the
// literal formula is preserved for comparability with recorded results.
type FibSupport struct {
	cfg      domain.StrategyConfig
	level    float64
	lookback int

	closes  []float64
	support []float64
	buyUnit float64
	maxBuys int
}

// Name implements Strategy.
func (s *FibSupport) Name() string {
	return fmt.Sprintf("Fib %.3g", s.level)
}

// MinHistory implements Strategy.
func (s *FibSupport) MinHistory() int { return s.lookback + 1 }

// Prepare implements Strategy.
func (s *FibSupport) Prepare(series *domain.CandleSeries) error {
	s.closes = series.Closes()
	s.support = indicator.FibonacciSupport(s.closes, s.lookback, s.level)
	s.buyUnit = s.cfg.Capital() * domain.DefaultBuyFraction
	s.maxBuys = s.cfg.MaxBuys()
	return nil
}

// Evaluate implements Strategy.
func (s *FibSupport) Evaluate(i int, p *domain.Portfolio) Decision {
	if i < s.lookback {
		return Decision{}
	}
	support := s.support[i]
	if math.IsNaN(support) {
		return Decision{}
	}

	if s.closes[i] <= support*(1+fibTouchTolerance) && len(p.EntryPrices) < s.maxBuys {
		return Decision{BuyAmount: s.buyUnit}
	}
	return Decision{}
}

var _ Strategy = (*FibSupport)(nil)
