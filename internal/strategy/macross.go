package strategy

import (
	"fmt"
	"math"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/indicator"
)

// MACrossover alternates between fully invested and fully in cash: all cash
// is committed when the fast SMA sits above the slow SMA (golden cross) and
// the position is liquidated when it drops below (death cross). The held/flat
// position is the two-state machine; each transition trades exactly once.
type MACrossover struct {
	fast int
	slow int

	fastMA []float64
	slowMA []float64
}

// Name implements Strategy.
func (s *MACrossover) Name() string {
	return fmt.Sprintf("MA Cross %d/%d", s.fast, s.slow)
}

// MinHistory implements Strategy.
func (s *MACrossover) MinHistory() int { return s.slow }

// Prepare implements Strategy.
func (s *MACrossover) Prepare(series *domain.CandleSeries) error {
	closes := series.Closes()
	s.fastMA = indicator.SMA(closes, s.fast)
	s.slowMA = indicator.SMA(closes, s.slow)
	return nil
}

// Evaluate implements Strategy.
func (s *MACrossover) Evaluate(i int, p *domain.Portfolio) Decision {
	f, sl := s.fastMA[i], s.slowMA[i]
	if math.IsNaN(f) || math.IsNaN(sl) {
		return Decision{}
	}

	inMarket := p.Units > 0
	switch {
	case f > sl && !inMarket && p.Cash > 0:
		return Decision{AllIn: true}
	case f < sl && inMarket:
		return Decision{Sell: true}
	default:
		return Decision{}
	}
}

var _ Strategy = (*MACrossover)(nil)
