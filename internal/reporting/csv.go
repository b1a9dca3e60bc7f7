package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the comparison rows as a CSV string.
func RenderCSV(rows []SummaryRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("strategy,total_return_pct,cagr_pct,sharpe_ratio,max_drawdown_pct,")
	sb.WriteString("volatility_pct,win_rate_pct,trade_count,final_value\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%d,%.2f\n",
			csvEscape(r.Strategy),
			r.TotalReturnPct,
			r.CAGRPct,
			r.SharpeRatio,
			r.MaxDrawdownPct,
			r.VolatilityPct,
			r.WinRatePct,
			r.TradeCount,
			r.FinalValue,
		))
	}

	return sb.String()
}

// csvEscape quotes a field containing commas or quotes. Catalog names carry
// commas ("MA Cross 50,200" style variants), so this is not hypothetical.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
