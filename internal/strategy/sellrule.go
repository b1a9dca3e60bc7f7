package strategy

import (
	"fmt"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/indicator"
)

// Relation is where the watched value sat relative to its reference on the
// most recently observed day. Crossover rules fire only on a Below→Above
// transition; a bare level condition on a single day never fires one.
// Carrying this state explicitly (instead of re-deriving it from raw series
// each day) is what guarantees exactly-once firing per regime change.
type Relation int

// Relation values.
const (
	RelationUndefined Relation = iota
	RelationBelow
	RelationAbove
)

// sellRule decides whether the whole position exits on a given day.
// Observe must be called once per day in walk order regardless of whether a
// position exists, so the relation state stays current across flat periods.
type sellRule interface {
	// Observe consumes day i and reports whether the rule fires.
	// Rules only fire while a position is held.
	Observe(i int, p *domain.Portfolio) bool

	// MinHistory returns the series length needed before the rule's
	// indicator is defined.
	MinHistory() int

	// Label returns the short name appended to the strategy display name.
	Label() string
}

// Default sell rule parameters.
const (
	defaultProfitTargetPct = 0.25
	defaultSellSMAWindow   = 50
	defaultSellEMAWindow   = 21
	defaultDistanceSMA     = 200
	defaultDistancePct     = 0.20
	emaCrossoverFast       = 9
	emaCrossoverSlow       = 21
)

// newSellRule builds the configured sell rule against the given closes.
// Returns (nil, nil) for SellRuleNone.
func newSellRule(cfg domain.StrategyConfig, closes []float64) (sellRule, error) {
	switch cfg.SellRule {
	case domain.SellRuleNone, "":
		return nil, nil

	case domain.SellRuleProfitTarget:
		pct := defaultProfitTargetPct
		if cfg.ProfitTargetPct != nil {
			pct = *cfg.ProfitTargetPct
		}
		if pct <= 0 {
			return nil, fmt.Errorf("%w: profit target must be positive", ErrInvalidSellRuleParam)
		}
		return &profitTargetRule{closes: closes, targetPct: pct}, nil

	case domain.SellRuleSMACross:
		window := defaultSellSMAWindow
		if cfg.SellWindow != nil {
			window = *cfg.SellWindow
		}
		return newCrossAboveRule(closes, indicator.SMA(closes, window), window,
			fmt.Sprintf("sma_%d", window), false), nil

	case domain.SellRuleEMACross:
		window := defaultSellEMAWindow
		if cfg.SellWindow != nil {
			window = *cfg.SellWindow
		}
		return newCrossAboveRule(closes, indicator.EMA(closes, window), window,
			fmt.Sprintf("ema_%d", window), false), nil

	case domain.SellRuleBollingerMiddle:
		window := 20
		if cfg.BollingerWindow != nil {
			window = *cfg.BollingerWindow
		}
		// Touching the middle band counts, so the comparison is inclusive.
		return newCrossAboveRule(closes, indicator.SMA(closes, window), window,
			"bb_middle", true), nil

	case domain.SellRuleEMACrossover:
		return &emaCrossoverRule{
			fast:       indicator.EMA(closes, emaCrossoverFast),
			slow:       indicator.EMA(closes, emaCrossoverSlow),
			minHistory: emaCrossoverSlow + 1,
		}, nil

	case domain.SellRuleSMADistance:
		dist := defaultDistancePct
		if cfg.DistancePct != nil {
			dist = *cfg.DistancePct
		}
		if dist <= 0 {
			return nil, fmt.Errorf("%w: distance must be positive", ErrInvalidSellRuleParam)
		}
		sma := indicator.SMA(closes, defaultDistanceSMA)
		// The rule watches the distance ratio, so the crossover reference is
		// the SMA shifted up by the configured percentage.
		threshold := make([]float64, len(sma))
		for i, v := range sma {
			threshold[i] = v * (1 + dist)
		}
		return newCrossAboveRule(closes, threshold, defaultDistanceSMA,
			"sma_distance", false), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSellRule, cfg.SellRule)
	}
}

// profitTargetRule exits when the close reaches the average entry price plus
// the target. Evaluated as a level, not a crossover: "has the target been
// reached" has no meaningful previous-day state.
type profitTargetRule struct {
	closes    []float64
	targetPct float64
}

func (r *profitTargetRule) Observe(i int, p *domain.Portfolio) bool {
	if p.Units <= 0 || len(p.EntryPrices) == 0 {
		return false
	}
	return r.closes[i] >= p.AvgEntryPrice()*(1+r.targetPct)
}

func (r *profitTargetRule) MinHistory() int { return 1 }

func (r *profitTargetRule) Label() string {
	return fmt.Sprintf("profit_%.0f", r.targetPct*100)
}

// crossAboveRule fires when the close crosses from at-or-below to above a
// reference series (inclusive variants treat touching as above).
type crossAboveRule struct {
	closes     []float64
	reference  []float64
	minHistory int
	label      string
	inclusive  bool
	rel        Relation
}

func newCrossAboveRule(closes, reference []float64, window int, label string, inclusive bool) *crossAboveRule {
	return &crossAboveRule{
		closes:     closes,
		reference:  reference,
		minHistory: window + 1,
		label:      label,
		inclusive:  inclusive,
	}
}

func (r *crossAboveRule) Observe(i int, p *domain.Portfolio) bool {
	ref := r.reference[i]
	if ref != ref { // NaN: indicator not yet defined
		r.rel = RelationUndefined
		return false
	}

	above := r.closes[i] > ref
	if r.inclusive {
		above = r.closes[i] >= ref
	}
	next := RelationBelow
	if above {
		next = RelationAbove
	}

	fires := r.rel == RelationBelow && next == RelationAbove && p.Units > 0
	r.rel = next
	return fires
}

func (r *crossAboveRule) MinHistory() int { return r.minHistory }

func (r *crossAboveRule) Label() string { return r.label }

// emaCrossoverRule fires when the fast EMA crosses above the slow EMA.
type emaCrossoverRule struct {
	fast       []float64
	slow       []float64
	minHistory int
	rel        Relation
}

func (r *emaCrossoverRule) Observe(i int, p *domain.Portfolio) bool {
	f, s := r.fast[i], r.slow[i]
	if f != f || s != s {
		r.rel = RelationUndefined
		return false
	}

	next := RelationBelow
	if f > s {
		next = RelationAbove
	}

	fires := r.rel == RelationBelow && next == RelationAbove && p.Units > 0
	r.rel = next
	return fires
}

func (r *emaCrossoverRule) MinHistory() int { return r.minHistory }

func (r *emaCrossoverRule) Label() string { return "ema_cross" }
