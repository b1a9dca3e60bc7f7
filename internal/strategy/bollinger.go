package strategy

import (
	"fmt"
	"math"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/indicator"
)

// BollingerBuy buys a fixed unit when the close touches or drops below the
// lower Bollinger band. Consecutive days below the band are debounced the
// same way as RSIOversold: the price must move back above the band before a
// new touch can trigger another buy.
type BollingerBuy struct {
	cfg    domain.StrategyConfig
	window int
	k      float64

	closes  []float64
	lower   []float64
	buyUnit float64
	maxBuys int
	inZone  bool
}

// Name implements Strategy.
func (s *BollingerBuy) Name() string {
	return fmt.Sprintf("Bollinger %dd", s.window)
}

// MinHistory implements Strategy.
func (s *BollingerBuy) MinHistory() int { return s.window + 1 }

// Prepare implements Strategy.
func (s *BollingerBuy) Prepare(series *domain.CandleSeries) error {
	s.closes = series.Closes()
	_, _, s.lower = indicator.Bollinger(s.closes, s.window, s.k)
	s.buyUnit = s.cfg.Capital() * domain.DefaultBuyFraction
	s.maxBuys = s.cfg.MaxBuys()
	return nil
}

// Evaluate implements Strategy.
func (s *BollingerBuy) Evaluate(i int, p *domain.Portfolio) Decision {
	band := s.lower[i]
	if math.IsNaN(band) {
		s.inZone = false
		return Decision{}
	}

	if s.closes[i] > band {
		s.inZone = false
		return Decision{}
	}

	var d Decision
	if !s.inZone && len(p.EntryPrices) < s.maxBuys {
		d.BuyAmount = s.buyUnit
	}
	s.inZone = true
	return d
}

var _ Strategy = (*BollingerBuy)(nil)
