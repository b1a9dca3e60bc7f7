package strategy

import (
	"fmt"
	"math"

	"crypto-strategy-lab/internal/domain"
)

// BuyTheDip buys a fixed unit whenever the close has fallen a configured
// percentage below the running all-time high, optionally paired with a
// crossover-based sell rule that liquidates the whole position.
type BuyTheDip struct {
	cfg    domain.StrategyConfig
	dipPct float64

	closes  []float64
	buyUnit float64
	maxBuys int
	sell    sellRule

	// ath is the running all-time high over closes[0..i-1] when day i is
	// evaluated; it deliberately excludes the current day so a dip is always
	// measured against information available before the decision.
	ath float64
}

// Name implements Strategy.
func (s *BuyTheDip) Name() string {
	name := fmt.Sprintf("Buy Dip %.0f%%", s.dipPct)
	if s.sell != nil {
		name += fmt.Sprintf(" (%s)", s.sell.Label())
	}
	return name
}

// MinHistory implements Strategy.
func (s *BuyTheDip) MinHistory() int {
	min := 2 // one prior day to establish the first ATH
	if s.sell != nil && s.sell.MinHistory() > min {
		min = s.sell.MinHistory()
	}
	return min
}

// Prepare implements Strategy.
func (s *BuyTheDip) Prepare(series *domain.CandleSeries) error {
	s.closes = series.Closes()
	s.buyUnit = s.cfg.Capital() * domain.DefaultBuyFraction
	s.maxBuys = s.cfg.MaxBuys()
	s.ath = math.NaN()

	sell, err := newSellRule(s.cfg, s.closes)
	if err != nil {
		return err
	}
	s.sell = sell
	return nil
}

// Evaluate implements Strategy.
func (s *BuyTheDip) Evaluate(i int, p *domain.Portfolio) Decision {
	var d Decision
	if s.sell != nil && s.sell.Observe(i, p) {
		d.Sell = true
	}

	price := s.closes[i]
	if !math.IsNaN(s.ath) {
		drawdownPct := (price - s.ath) / s.ath * 100
		if drawdownPct <= -s.dipPct && s.openLots(p, d.Sell) < s.maxBuys {
			d.BuyAmount = s.buyUnit
		}
	}

	if math.IsNaN(s.ath) || price > s.ath {
		s.ath = price
	}
	return d
}

// openLots returns how many entry lots will be held once today's sell (if
// any) has been applied, which is what the concurrent-buy cap gates on.
func (s *BuyTheDip) openLots(p *domain.Portfolio, sellingToday bool) int {
	if sellingToday {
		return 0
	}
	return len(p.EntryPrices)
}

var _ Strategy = (*BuyTheDip)(nil)
