package backtest

import (
	"errors"
	"testing"

	"crypto-strategy-lab/internal/domain"
)

func batchConfigs() []domain.StrategyConfig {
	freq := 7
	fast, slow := 10, 30
	dip := 10.0
	return []domain.StrategyConfig{
		{Kind: domain.StrategyHODL, InitialCapital: 10000},
		{Kind: domain.StrategyDCA, InitialCapital: 10000, FrequencyDays: &freq},
		{Kind: domain.StrategyMACrossover, InitialCapital: 10000, FastWindow: &fast, SlowWindow: &slow},
		{Kind: domain.StrategyBuyTheDip, InitialCapital: 10000, DipPct: &dip},
	}
}

// trendingSeries is long enough for every config and includes a full
// rise-fall-rise cycle so crossover strategies actually trade.
func trendingSeries(t *testing.T) *domain.CandleSeries {
	t.Helper()

	closes := make([]float64, 0, 120)
	price := 100.0
	for i := 0; i < 120; i++ {
		switch {
		case i < 50:
			price *= 1.01
		case i < 80:
			price *= 0.985
		default:
			price *= 1.012
		}
		closes = append(closes, price)
	}
	return makeSeries(t, closes...)
}

func TestRunAll_MatchesSequentialRuns(t *testing.T) {
	series := trendingSeries(t)
	cfgs := batchConfigs()

	batch, err := RunAll(series, cfgs, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, cfg := range cfgs {
		single, err := Run(series, cfg)
		if err != nil {
			t.Fatalf("sequential run %d failed: %v", i, err)
		}
		if batch[i].Strategy != single.Strategy {
			t.Errorf("result %d: strategy %q vs %q", i, batch[i].Strategy, single.Strategy)
		}
		if batch[i].TradeCount() != single.TradeCount() {
			t.Errorf("result %d: trade count %d vs %d", i, batch[i].TradeCount(), single.TradeCount())
		}
		bFinal := batch[i].Equity[len(batch[i].Equity)-1].Value
		sFinal := single.Equity[len(single.Equity)-1].Value
		if bFinal != sFinal {
			t.Errorf("result %d: final value %f vs %f", i, bFinal, sFinal)
		}
	}
}

func TestRunAll_PreservesInputOrder(t *testing.T) {
	series := trendingSeries(t)
	cfgs := batchConfigs()

	results, err := RunAll(series, cfgs, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"HODL", "DCA 7d", "MA Cross 10/30", "Buy Dip 10%"}
	for i, name := range want {
		if results[i].Strategy != name {
			t.Errorf("result %d: expected %q, got %q", i, name, results[i].Strategy)
		}
	}
}

func TestRunAll_PartialFailure(t *testing.T) {
	series := trendingSeries(t)

	cfgs := batchConfigs()
	// Invalid: BUY_THE_DIP without its dip percentage.
	cfgs[1] = domain.StrategyConfig{Kind: domain.StrategyBuyTheDip}

	results, err := RunAll(series, cfgs, 4)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected joined ErrInvalidConfig, got %v", err)
	}

	if results[1] != nil {
		t.Error("failed config should leave a nil placeholder")
	}
	for _, i := range []int{0, 2, 3} {
		if results[i] == nil {
			t.Errorf("result %d should have survived the failure", i)
		}
	}
}

func TestRunAll_WorkerCountDoesNotChangeResults(t *testing.T) {
	series := trendingSeries(t)
	cfgs := batchConfigs()

	one, err := RunAll(series, cfgs, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	many, err := RunAll(series, cfgs, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range cfgs {
		a := one[i].Equity[len(one[i].Equity)-1].Value
		b := many[i].Equity[len(many[i].Equity)-1].Value
		if a != b {
			t.Errorf("result %d: final value differs across worker counts: %f vs %f", i, a, b)
		}
	}
}
