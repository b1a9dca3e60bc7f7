package strategy

import "crypto-strategy-lab/internal/domain"

// HODL buys the entire capital on the first day and never trades again.
// It is the baseline every other strategy is compared against.
type HODL struct {
	capital float64
}

// Name implements Strategy.
func (s *HODL) Name() string { return "HODL" }

// MinHistory implements Strategy.
func (s *HODL) MinHistory() int { return 1 }

// Prepare implements Strategy.
func (s *HODL) Prepare(_ *domain.CandleSeries) error { return nil }

// Evaluate implements Strategy.
func (s *HODL) Evaluate(i int, _ *domain.Portfolio) Decision {
	if i == 0 {
		return Decision{AllIn: true}
	}
	return Decision{}
}

var _ Strategy = (*HODL)(nil)
