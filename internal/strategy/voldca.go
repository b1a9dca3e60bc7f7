package strategy

import (
	"math"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/indicator"
)

// VolAdjustedDCA keeps the DCA calendar cadence but scales each buy by the
// current 30-day realized volatility relative to its average to date, clamped
// to [0.5, 2.0]. Higher current volatility means a larger buy.
type VolAdjustedDCA struct {
	capital   float64
	frequency int

	baseAmount float64
	vol        []float64
}

// Name implements Strategy.
func (s *VolAdjustedDCA) Name() string { return "Vol-Adjusted DCA" }

// MinHistory implements Strategy.
func (s *VolAdjustedDCA) MinHistory() int { return volDCAWindow + 1 }

// Prepare implements Strategy.
func (s *VolAdjustedDCA) Prepare(series *domain.CandleSeries) error {
	closes := series.Closes()
	s.vol = indicator.RollingStd(indicator.DailyReturns(closes), volDCAWindow)

	totalBuys := series.Len() / s.frequency
	if totalBuys == 0 {
		s.baseAmount = s.capital
		return nil
	}
	s.baseAmount = s.capital / float64(totalBuys)
	return nil
}

// Evaluate implements Strategy.
func (s *VolAdjustedDCA) Evaluate(i int, _ *domain.Portfolio) Decision {
	if i%s.frequency != 0 || i < volDCAWindow {
		return Decision{}
	}

	amount := s.baseAmount
	current := s.vol[i]
	avg := meanDefined(s.vol[:i])
	if !math.IsNaN(current) && !math.IsNaN(avg) && avg > 0 {
		mult := current / avg
		if mult < 0.5 {
			mult = 0.5
		}
		if mult > 2.0 {
			mult = 2.0
		}
		amount = s.baseAmount * mult
	}
	return Decision{BuyAmount: amount}
}

// meanDefined averages the non-NaN values, NaN when none are defined.
func meanDefined(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

var _ Strategy = (*VolAdjustedDCA)(nil)
