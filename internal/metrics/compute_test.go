package metrics

import (
	"math"
	"testing"
	"time"

	"crypto-strategy-lab/internal/domain"
)

func makeEquity(start time.Time, values ...float64) []domain.EquityPoint {
	points := make([]domain.EquityPoint, len(values))
	for i, v := range values {
		points[i] = domain.EquityPoint{Date: start.AddDate(0, 0, i), Value: v}
	}
	return points
}

var testStart = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCompute_FlatSeries(t *testing.T) {
	equity := makeEquity(testStart, 10000, 10000, 10000, 10000)
	s := Compute("HODL", equity, 1)

	if s.Strategy != "HODL" || s.TradeCount != 1 {
		t.Errorf("identity fields not carried through: %+v", s)
	}
	if s.TotalReturnPct != 0 || s.CAGRPct != 0 || s.MaxDrawdownPct != 0 {
		t.Errorf("flat series must have zero returns and drawdown: %+v", s)
	}
	if s.VolatilityPct != 0 || s.SharpeRatio != 0 || s.WinRatePct != 0 {
		t.Errorf("flat series must have zero volatility, sharpe and win rate: %+v", s)
	}
	if s.FinalValue != 10000 {
		t.Errorf("expected final value 10000, got %f", s.FinalValue)
	}
}

func TestCompute_EmptySeries(t *testing.T) {
	s := Compute("DCA 30d", nil, 0)
	if s.Strategy != "DCA 30d" {
		t.Errorf("expected strategy name preserved, got %q", s.Strategy)
	}
	if s.FinalValue != 0 || s.TotalReturnPct != 0 {
		t.Errorf("empty series must yield zeros: %+v", s)
	}
}

func TestCompute_TotalReturnAndCAGR(t *testing.T) {
	// 21% over one calendar year.
	equity := []domain.EquityPoint{
		{Date: testStart, Value: 10000},
		{Date: testStart.AddDate(1, 0, 0), Value: 12100},
	}
	s := Compute("HODL", equity, 1)

	if !approxEqual(s.TotalReturnPct, 21, 1e-9) {
		t.Errorf("expected 21%% total return, got %f", s.TotalReturnPct)
	}
	// Elapsed time is 365/365.25 years, so the CAGR lands a touch above the
	// raw return.
	if !approxEqual(s.CAGRPct, 21.01, 0.05) {
		t.Errorf("expected CAGR near 21%%, got %f", s.CAGRPct)
	}
}

func TestCompute_CAGRCompoundsOverTwoYears(t *testing.T) {
	equity := []domain.EquityPoint{
		{Date: testStart, Value: 10000},
		{Date: testStart.AddDate(2, 0, 0), Value: 14400},
	}
	s := Compute("HODL", equity, 1)

	// 44% over two years compounds to 20% per year.
	if !approxEqual(s.CAGRPct, 20, 0.05) {
		t.Errorf("expected CAGR near 20%%, got %f", s.CAGRPct)
	}
}

func TestCompute_VolatilityUses365Days(t *testing.T) {
	// Daily returns: 0, +1%, +1%. Sample std = 0.0057735; annualized with
	// sqrt(365), not the equity-market 252.
	equity := makeEquity(testStart, 100, 101, 102.01)
	s := Compute("HODL", equity, 1)

	if !approxEqual(s.VolatilityPct, 11.0303, 0.001) {
		t.Errorf("expected 11.03%% annualized volatility, got %f", s.VolatilityPct)
	}
	if !approxEqual(s.SharpeRatio, 22.0605, 0.01) {
		t.Errorf("expected sharpe 22.06, got %f", s.SharpeRatio)
	}
}

func TestCompute_MaxDrawdown(t *testing.T) {
	equity := makeEquity(testStart, 100, 120, 90, 95, 130)
	s := Compute("HODL", equity, 1)

	// Peak 120 to trough 90.
	if !approxEqual(s.MaxDrawdownPct, -25, 1e-9) {
		t.Errorf("expected -25%% drawdown, got %f", s.MaxDrawdownPct)
	}
}

func TestCompute_DrawdownZeroOnMonotonicRise(t *testing.T) {
	equity := makeEquity(testStart, 100, 110, 120, 130)
	s := Compute("HODL", equity, 1)

	if s.MaxDrawdownPct != 0 {
		t.Errorf("expected zero drawdown, got %f", s.MaxDrawdownPct)
	}
}

func TestCompute_WinRate(t *testing.T) {
	// Returns: 0 (first day), +10%, -4.5%, +9.5%, 0. Two positive out of 5.
	equity := makeEquity(testStart, 100, 110, 105, 115, 115)
	s := Compute("HODL", equity, 1)

	if !approxEqual(s.WinRatePct, 40, 1e-9) {
		t.Errorf("expected 40%% win rate, got %f", s.WinRatePct)
	}
}

func TestCompute_SinglePoint(t *testing.T) {
	equity := makeEquity(testStart, 10000)
	s := Compute("HODL", equity, 0)

	if s.TotalReturnPct != 0 || s.CAGRPct != 0 || s.VolatilityPct != 0 {
		t.Errorf("single point must yield zero rates: %+v", s)
	}
	if s.FinalValue != 10000 {
		t.Errorf("expected final value 10000, got %f", s.FinalValue)
	}
}
