package indicator

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSMA_WarmupAndValues(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	sma := SMA(closes, 3)

	for i := 0; i < 2; i++ {
		if !math.IsNaN(sma[i]) {
			t.Errorf("expected NaN at warmup index %d, got %f", i, sma[i])
		}
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if !approxEqual(sma[i+2], w, 1e-9) {
			t.Errorf("sma[%d]: expected %f, got %f", i+2, w, sma[i+2])
		}
	}
}

func TestSMA_WindowLargerThanSeries(t *testing.T) {
	sma := SMA([]float64{1, 2, 3}, 10)
	for i, v := range sma {
		if !math.IsNaN(v) {
			t.Errorf("expected all-NaN series, got %f at %d", v, i)
		}
	}
}

func TestEMA_SeededBySMA(t *testing.T) {
	closes := []float64{2, 4, 6, 8}
	ema := EMA(closes, 3)

	if !math.IsNaN(ema[0]) || !math.IsNaN(ema[1]) {
		t.Fatal("expected NaN during warmup")
	}
	// Seed = SMA of first 3 = 4; alpha = 2/4 = 0.5; next = (8-4)*0.5 + 4 = 6.
	if !approxEqual(ema[2], 4, 1e-9) {
		t.Errorf("expected seed 4, got %f", ema[2])
	}
	if !approxEqual(ema[3], 6, 1e-9) {
		t.Errorf("expected 6, got %f", ema[3])
	}
}

func TestRSI_AllGainsIs100(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7}
	rsi := RSI(closes, 3)

	if !approxEqual(rsi[len(rsi)-1], 100, 1e-9) {
		t.Errorf("expected RSI 100 on monotonic gains, got %f", rsi[len(rsi)-1])
	}
}

func TestRSI_BalancedGainsAndLosses(t *testing.T) {
	// Alternating +1/-1 deltas: avg gain equals avg loss, RS = 1, RSI = 50.
	closes := []float64{10, 11, 10, 11, 10, 11, 10}
	rsi := RSI(closes, 4)

	if !approxEqual(rsi[len(rsi)-1], 50, 1e-9) {
		t.Errorf("expected RSI 50, got %f", rsi[len(rsi)-1])
	}
}

func TestRSI_Warmup(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	rsi := RSI(closes, 14)
	for i, v := range rsi {
		if !math.IsNaN(v) {
			t.Errorf("expected NaN with window >= series length, got %f at %d", v, i)
		}
	}
}

func TestBollinger_BandsAroundMiddle(t *testing.T) {
	closes := []float64{10, 12, 14, 12, 10, 12, 14}
	upper, middle, lower := Bollinger(closes, 5, 2)

	for i := 4; i < len(closes); i++ {
		if math.IsNaN(middle[i]) {
			t.Fatalf("middle undefined at %d", i)
		}
		if !(upper[i] > middle[i] && lower[i] < middle[i]) {
			t.Errorf("band ordering violated at %d: %f %f %f", i, lower[i], middle[i], upper[i])
		}
		if !approxEqual(upper[i]-middle[i], middle[i]-lower[i], 1e-9) {
			t.Errorf("bands not symmetric at %d", i)
		}
	}
}

func TestRollingStd_ConstantSeriesIsZero(t *testing.T) {
	closes := []float64{5, 5, 5, 5, 5}
	std := RollingStd(closes, 3)
	for i := 2; i < len(std); i++ {
		if !approxEqual(std[i], 0, 1e-12) {
			t.Errorf("expected zero std at %d, got %f", i, std[i])
		}
	}
}

func TestRollingHighLow(t *testing.T) {
	closes := []float64{3, 1, 4, 1, 5, 9, 2}
	high := RollingHigh(closes, 3)
	low := RollingLow(closes, 3)

	if high[4] != 5 || low[4] != 1 {
		t.Errorf("expected high 5 / low 1 at index 4, got %f / %f", high[4], low[4])
	}
	if high[5] != 9 || low[5] != 1 {
		t.Errorf("expected high 9 / low 1 at index 5, got %f / %f", high[5], low[5])
	}
}

func TestFibonacciSupport_LiteralFormula(t *testing.T) {
	// Rolling window 3: at index 2 high=30, low=10, support = 10 + 0.5*20 = 20.
	closes := []float64{10, 20, 30}
	support := FibonacciSupport(closes, 3, 0.5)

	if !math.IsNaN(support[0]) || !math.IsNaN(support[1]) {
		t.Fatal("expected NaN during lookback warmup")
	}
	if !approxEqual(support[2], 20, 1e-9) {
		t.Errorf("expected support 20, got %f", support[2])
	}
}

func TestDailyReturns(t *testing.T) {
	returns := DailyReturns([]float64{100, 110, 99})
	if returns[0] != 0 {
		t.Errorf("expected first return 0, got %f", returns[0])
	}
	if !approxEqual(returns[1], 0.10, 1e-9) {
		t.Errorf("expected 0.10, got %f", returns[1])
	}
	if !approxEqual(returns[2], -0.10, 1e-9) {
		t.Errorf("expected -0.10, got %f", returns[2])
	}
}
