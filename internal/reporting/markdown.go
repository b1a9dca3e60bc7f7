package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Strategy Comparison: %s\n\n", r.Symbol))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Period: %s to %s | Strategies: %d\n\n",
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), r.StrategyCount))

	// Strategy table
	sb.WriteString("## Results\n\n")
	if len(r.Rows) > 0 {
		sb.WriteString("| Strategy | Return | CAGR | Sharpe | MaxDD | Vol | WinRate | Trades | Final Value |\n")
		sb.WriteString("|----------|--------|------|--------|-------|-----|---------|--------|-------------|\n")
		for _, row := range r.Rows {
			sb.WriteString(fmt.Sprintf("| %s | %.2f%% | %.2f%% | %.2f | %.2f%% | %.2f%% | %.2f%% | %d | %.2f |\n",
				row.Strategy, row.TotalReturnPct, row.CAGRPct, row.SharpeRatio,
				row.MaxDrawdownPct, row.VolatilityPct, row.WinRatePct,
				row.TradeCount, row.FinalValue))
		}
	} else {
		sb.WriteString("No results available.\n")
	}
	sb.WriteString("\n")

	// Insights
	sb.WriteString("## Insights\n\n")
	ins := r.Insights
	sb.WriteString(fmt.Sprintf("- Best strategy: **%s** (%.2f%%)\n", ins.BestStrategy, ins.BestReturnPct))
	if ins.BeatsHODL {
		sb.WriteString(fmt.Sprintf("- Beats buy-and-hold by %.2f%% (HODL: %.2f%%)\n",
			ins.BestVsHODLPct, ins.HODLReturnPct))
	} else {
		sb.WriteString(fmt.Sprintf("- No strategy beat buy-and-hold (HODL: %.2f%%)\n", ins.HODLReturnPct))
	}
	sb.WriteString(fmt.Sprintf("- Shallowest drawdown: **%s** (%.2f%%)\n",
		ins.LowestDrawdownStrategy, ins.LowestDrawdownPct))
	sb.WriteString(fmt.Sprintf("- Best Sharpe: **%s** (%.2f)\n", ins.BestSharpeStrategy, ins.BestSharpe))
	sb.WriteString("\n")

	// Yearly breakdown
	if len(r.Yearly) > 0 {
		sb.WriteString("## Yearly Returns\n\n")
		sb.WriteString("| Strategy | Year | Return |\n")
		sb.WriteString("|----------|------|--------|\n")
		for _, y := range r.Yearly {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f%% |\n", y.Strategy, y.Year, y.ReturnPct))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
