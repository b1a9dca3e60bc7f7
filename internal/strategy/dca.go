package strategy

import (
	"fmt"

	"crypto-strategy-lab/internal/domain"
)

// DCA buys a fixed slice of the initial capital every frequency days,
// unconditionally, until the capital is exhausted. The slice is sized so the
// whole capital is deployed over the series (capital / expected buy count).
type DCA struct {
	capital   float64
	frequency int

	amount float64
}

// Name implements Strategy.
func (s *DCA) Name() string {
	return fmt.Sprintf("DCA %dd", s.frequency)
}

// MinHistory implements Strategy.
func (s *DCA) MinHistory() int { return 1 }

// Prepare implements Strategy.
func (s *DCA) Prepare(series *domain.CandleSeries) error {
	totalBuys := series.Len() / s.frequency
	if totalBuys == 0 {
		s.amount = s.capital
		return nil
	}
	s.amount = s.capital / float64(totalBuys)
	return nil
}

// Evaluate implements Strategy.
func (s *DCA) Evaluate(i int, _ *domain.Portfolio) Decision {
	if i%s.frequency == 0 {
		return Decision{BuyAmount: s.amount}
	}
	return Decision{}
}

var _ Strategy = (*DCA)(nil)
