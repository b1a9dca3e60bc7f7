package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"crypto-strategy-lab/internal/domain"
	"crypto-strategy-lab/internal/storage"
)

// hodlPrefix identifies the buy-and-hold baseline row by its catalog name.
const hodlPrefix = "HODL"

// Generator produces comparison reports from stored run summaries.
type Generator struct {
	summaryStore storage.SummaryStore
	equityStore  storage.EquityStore
	now          func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. The equity store may be nil;
// the yearly breakdown is skipped in that case.
func NewGenerator(summaryStore storage.SummaryStore, equityStore storage.EquityStore) *Generator {
	return &Generator{
		summaryStore: summaryStore,
		equityStore:  equityStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete comparison report for the symbol.
func (g *Generator) Generate(ctx context.Context, symbol string) (*Report, error) {
	summaries, err := g.summaryStore.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load summaries: %w", err)
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no stored runs for symbol %s", symbol)
	}

	// When a symbol ran more than once, keep the latest run per strategy.
	summaries = latestPerStrategy(summaries)

	rows := buildRows(summaries)
	report := &Report{
		GeneratedAt:   g.now(),
		Symbol:        symbol,
		StartDate:     summaries[0].StartDate,
		EndDate:       summaries[0].EndDate,
		StrategyCount: len(rows),
		Rows:          rows,
		Insights:      buildInsights(rows),
	}

	if g.equityStore != nil {
		yearly, err := g.buildYearly(ctx, summaries)
		if err != nil {
			return nil, err
		}
		report.Yearly = yearly
	}

	return report, nil
}

// latestPerStrategy keeps the newest summary for each strategy name.
// Input is ordered by created_at ASC, so later entries win.
func latestPerStrategy(summaries []*domain.RunSummary) []*domain.RunSummary {
	byStrategy := make(map[string]*domain.RunSummary)
	var order []string
	for _, s := range summaries {
		if _, seen := byStrategy[s.Metrics.Strategy]; !seen {
			order = append(order, s.Metrics.Strategy)
		}
		byStrategy[s.Metrics.Strategy] = s
	}

	out := make([]*domain.RunSummary, 0, len(order))
	for _, name := range order {
		out = append(out, byStrategy[name])
	}
	return out
}

// buildRows converts summaries to rows sorted by total return, best first.
// Ties break on strategy name for stable output.
func buildRows(summaries []*domain.RunSummary) []SummaryRow {
	rows := make([]SummaryRow, len(summaries))
	for i, s := range summaries {
		m := s.Metrics
		rows[i] = SummaryRow{
			Strategy:       m.Strategy,
			TotalReturnPct: m.TotalReturnPct,
			CAGRPct:        m.CAGRPct,
			SharpeRatio:    m.SharpeRatio,
			MaxDrawdownPct: m.MaxDrawdownPct,
			VolatilityPct:  m.VolatilityPct,
			WinRatePct:     m.WinRatePct,
			TradeCount:     m.TradeCount,
			FinalValue:     m.FinalValue,
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalReturnPct != rows[j].TotalReturnPct {
			return rows[i].TotalReturnPct > rows[j].TotalReturnPct
		}
		return rows[i].Strategy < rows[j].Strategy
	})
	return rows
}

// buildInsights derives the standout strategies from sorted rows.
func buildInsights(rows []SummaryRow) Insights {
	ins := Insights{
		BestStrategy:  rows[0].Strategy,
		BestReturnPct: rows[0].TotalReturnPct,
	}

	for _, r := range rows {
		if strings.HasPrefix(r.Strategy, hodlPrefix) {
			ins.HODLReturnPct = r.TotalReturnPct
			break
		}
	}
	ins.BestVsHODLPct = ins.BestReturnPct - ins.HODLReturnPct
	ins.BeatsHODL = ins.BestVsHODLPct > 0

	// Drawdowns are negative percentages: closest to zero is the shallowest.
	ins.LowestDrawdownStrategy = rows[0].Strategy
	ins.LowestDrawdownPct = rows[0].MaxDrawdownPct
	ins.BestSharpeStrategy = rows[0].Strategy
	ins.BestSharpe = rows[0].SharpeRatio
	for _, r := range rows[1:] {
		if r.MaxDrawdownPct > ins.LowestDrawdownPct {
			ins.LowestDrawdownStrategy = r.Strategy
			ins.LowestDrawdownPct = r.MaxDrawdownPct
		}
		if r.SharpeRatio > ins.BestSharpe {
			ins.BestSharpeStrategy = r.Strategy
			ins.BestSharpe = r.SharpeRatio
		}
	}

	return ins
}

// buildYearly computes per-calendar-year returns from stored equity curves.
func (g *Generator) buildYearly(ctx context.Context, summaries []*domain.RunSummary) ([]YearlyRow, error) {
	var rows []YearlyRow
	for _, s := range summaries {
		equity, err := g.equityStore.GetByRunID(ctx, s.RunID)
		if err != nil {
			return nil, fmt.Errorf("load equity for %s: %w", s.Metrics.Strategy, err)
		}
		rows = append(rows, yearlyReturns(s.Metrics.Strategy, equity)...)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Strategy != rows[j].Strategy {
			return rows[i].Strategy < rows[j].Strategy
		}
		return rows[i].Year < rows[j].Year
	})
	return rows, nil
}

// yearlyReturns slices one equity curve into calendar years. Each year's
// return measures from the last value of the prior year (or the first point
// for the opening year) to the year's final value.
func yearlyReturns(strategy string, equity []domain.EquityPoint) []YearlyRow {
	if len(equity) == 0 {
		return nil
	}

	var rows []YearlyRow
	baseline := equity[0].Value
	year := equity[0].Date.Year()
	last := equity[0].Value

	flush := func() {
		if baseline > 0 {
			rows = append(rows, YearlyRow{
				Strategy:  strategy,
				Year:      year,
				ReturnPct: (last/baseline - 1) * 100,
			})
		}
	}

	for _, p := range equity[1:] {
		if y := p.Date.Year(); y != year {
			flush()
			baseline = last
			year = y
		}
		last = p.Value
	}
	flush()

	return rows
}
