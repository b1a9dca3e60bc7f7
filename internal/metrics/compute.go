// Package metrics derives standardized performance statistics from a daily
// portfolio-value series. Annualization uses 365 days, not the equity-market
// 252: the underlying assets trade every calendar day. Every function here is
// a pure function of its inputs.
package metrics

import (
	"math"

	"crypto-strategy-lab/internal/domain"
)

// daysPerYear is the crypto annualization convention. Must stay 365.
const daysPerYear = 365

// Compute calculates the full metrics summary for one strategy run from its
// equity series. tradeCount is passed through unchanged from the engine.
func Compute(strategyName string, equity []domain.EquityPoint, tradeCount int) *domain.MetricsSummary {
	s := &domain.MetricsSummary{
		Strategy:   strategyName,
		TradeCount: tradeCount,
	}
	if len(equity) == 0 {
		return s
	}

	first := equity[0].Value
	last := equity[len(equity)-1].Value
	s.FinalValue = last
	s.TotalReturnPct = (last/first - 1) * 100

	years := equity[len(equity)-1].Date.Sub(equity[0].Date).Hours() / 24 / 365.25
	if years > 0 {
		s.CAGRPct = (math.Pow(last/first, 1/years) - 1) * 100
	}

	returns := dailyReturns(equity)
	mean := meanOf(returns)
	std := sampleStd(returns, mean)

	s.VolatilityPct = std * math.Sqrt(daysPerYear) * 100
	if std > 0 {
		s.SharpeRatio = (mean * daysPerYear) / (std * math.Sqrt(daysPerYear))
	}
	s.MaxDrawdownPct = maxDrawdown(equity)
	s.WinRatePct = winRate(returns)

	return s
}

// dailyReturns computes day-over-day fractional changes; the first value is
// defined as 0.
func dailyReturns(equity []domain.EquityPoint) []float64 {
	returns := make([]float64, len(equity))
	for i := 1; i < len(equity); i++ {
		returns[i] = equity[i].Value/equity[i-1].Value - 1
	}
	return returns
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the sample standard deviation (n-1 denominator).
func sampleStd(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// maxDrawdown is the worst peak-to-trough decline as a negative percentage.
func maxDrawdown(equity []domain.EquityPoint) float64 {
	peak := equity[0].Value
	worst := 0.0
	for _, pt := range equity {
		if pt.Value > peak {
			peak = pt.Value
		}
		dd := (pt.Value - peak) / peak * 100
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

// winRate is the share of days with a positive return, in percent.
func winRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns)) * 100
}
