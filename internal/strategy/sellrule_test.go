package strategy

import (
	"math"
	"testing"

	"crypto-strategy-lab/internal/domain"
)

func held() *domain.Portfolio {
	return &domain.Portfolio{Units: 1, EntryPrices: []float64{100}}
}

func flat() *domain.Portfolio {
	return &domain.Portfolio{Cash: 10000}
}

func TestCrossAboveRule_FiresOncePerCross(t *testing.T) {
	closes := []float64{5, 5, 12, 13, 7, 13}
	reference := []float64{10, 10, 10, 10, 10, 10}
	rule := newCrossAboveRule(closes, reference, 0, "test", false)

	p := held()
	want := []bool{false, false, true, false, false, true}
	for i, w := range want {
		if got := rule.Observe(i, p); got != w {
			t.Errorf("day %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestCrossAboveRule_NeverFiresWhileFlat(t *testing.T) {
	closes := []float64{5, 12, 5, 12}
	reference := []float64{10, 10, 10, 10}
	rule := newCrossAboveRule(closes, reference, 0, "test", false)

	p := flat()
	for i := range closes {
		if rule.Observe(i, p) {
			t.Errorf("day %d fired with no position", i)
		}
	}
}

func TestCrossAboveRule_StateAdvancesWhileFlat(t *testing.T) {
	closes := []float64{5, 12, 13}
	reference := []float64{10, 10, 10}
	rule := newCrossAboveRule(closes, reference, 0, "test", false)

	// The cross happens on day 1 with no position; by day 2 the relation is
	// already Above, so acquiring a position must not trigger a stale fire.
	rule.Observe(0, flat())
	rule.Observe(1, flat())
	if rule.Observe(2, held()) {
		t.Error("day 2 fired on a cross that happened while flat")
	}
}

func TestCrossAboveRule_NaNResetsRelation(t *testing.T) {
	nan := math.NaN()
	closes := []float64{5, 12, 13}
	reference := []float64{10, nan, 10}
	rule := newCrossAboveRule(closes, reference, 0, "test", false)

	p := held()
	rule.Observe(0, p) // below
	rule.Observe(1, p) // undefined: relation resets
	if rule.Observe(2, p) {
		t.Error("undefined-to-above must not count as a cross")
	}
}

func TestCrossAboveRule_InclusiveTreatsTouchAsAbove(t *testing.T) {
	closes := []float64{5, 10}
	reference := []float64{10, 10}

	strict := newCrossAboveRule(closes, reference, 0, "strict", false)
	inclusive := newCrossAboveRule(closes, reference, 0, "inclusive", true)

	p := held()
	strict.Observe(0, p)
	inclusive.Observe(0, p)

	if strict.Observe(1, p) {
		t.Error("strict rule fired on an exact touch")
	}
	if !inclusive.Observe(1, p) {
		t.Error("inclusive rule should fire on an exact touch")
	}
}

func TestEMACrossoverRule_FiresOnFastCrossingSlow(t *testing.T) {
	// Down, then sharply up: the 9-day EMA crosses the 21-day EMA once.
	closes := make([]float64, 0, 60)
	price := 100.0
	for i := 0; i < 30; i++ {
		price *= 0.99
		closes = append(closes, price)
	}
	for i := 0; i < 30; i++ {
		price *= 1.02
		closes = append(closes, price)
	}

	rule, err := newSellRule(domain.StrategyConfig{SellRule: domain.SellRuleEMACrossover}, closes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := held()
	fires := 0
	for i := range closes {
		if rule.Observe(i, p) {
			fires++
		}
	}
	if fires != 1 {
		t.Errorf("expected exactly 1 fire, got %d", fires)
	}
}

func TestProfitTargetRule_LevelNotCrossover(t *testing.T) {
	closes := []float64{100, 130, 131}
	rule, err := newSellRule(domain.StrategyConfig{SellRule: domain.SellRuleProfitTarget}, closes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := held() // entry at 100, default target +25%
	if rule.Observe(0, p) {
		t.Error("day 0 below target fired")
	}
	if !rule.Observe(1, p) {
		t.Error("day 1 above target should fire")
	}
	// Level semantics: still above target, still firing while held.
	if !rule.Observe(2, p) {
		t.Error("day 2 above target should keep firing")
	}
}

func TestNewSellRule_NoneAndUnknown(t *testing.T) {
	rule, err := newSellRule(domain.StrategyConfig{SellRule: domain.SellRuleNone}, []float64{1})
	if err != nil || rule != nil {
		t.Errorf("NONE should yield (nil, nil), got (%v, %v)", rule, err)
	}

	if _, err := newSellRule(domain.StrategyConfig{SellRule: "TRAILING_STOP"}, []float64{1}); err == nil {
		t.Error("unknown sell rule should fail")
	}
}
