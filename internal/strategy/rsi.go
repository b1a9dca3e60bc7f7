package strategy

import (
	"fmt"
	"math"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/indicator"
)

// RSIOversold buys a fixed unit when the RSI drops below a threshold.
// Repeated qualifying days are debounced: once a buy fires, the signal is
// suppressed until the RSI leaves the oversold zone and re-enters it.
type RSIOversold struct {
	cfg       domain.StrategyConfig
	threshold float64
	period    int

	rsi     []float64
	buyUnit float64
	maxBuys int
	inZone  bool
}

// Name implements Strategy.
func (s *RSIOversold) Name() string {
	return fmt.Sprintf("RSI <%.0f", s.threshold)
}

// MinHistory implements Strategy.
func (s *RSIOversold) MinHistory() int { return s.period + 1 }

// Prepare implements Strategy.
func (s *RSIOversold) Prepare(series *domain.CandleSeries) error {
	s.rsi = indicator.RSI(series.Closes(), s.period)
	s.buyUnit = s.cfg.Capital() * domain.DefaultBuyFraction
	s.maxBuys = s.cfg.MaxBuys()
	return nil
}

// Evaluate implements Strategy.
func (s *RSIOversold) Evaluate(i int, p *domain.Portfolio) Decision {
	v := s.rsi[i]
	if math.IsNaN(v) {
		s.inZone = false
		return Decision{}
	}

	if v >= s.threshold {
		s.inZone = false
		return Decision{}
	}

	// Oversold. Fire only on entering the zone.
	var d Decision
	if !s.inZone && len(p.EntryPrices) < s.maxBuys {
		d.BuyAmount = s.buyUnit
	}
	s.inZone = true
	return d
}

var _ Strategy = (*RSIOversold)(nil)
