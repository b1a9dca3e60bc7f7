package domain

import "time"

// MetricsSummary is the standardized performance summary of one strategy run.
// All percentages are expressed as percent values (12.5 = 12.5%); drawdown is
// negative or zero. Computed once from an equity series, never mutated.
type MetricsSummary struct {
	Strategy       string  `json:"strategy"`
	TotalReturnPct float64 `json:"total_return_pct"`
	CAGRPct        float64 `json:"cagr_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	VolatilityPct  float64 `json:"annualized_volatility_pct"`
	WinRatePct     float64 `json:"win_rate_pct"`
	TradeCount     int     `json:"trade_count"`
	FinalValue     float64 `json:"final_value"`
}

// RunSummary is a persisted backtest result: the metrics summary plus the
// identifying run coordinates.
type RunSummary struct {
	RunID     string         `json:"run_id"`
	Symbol    string         `json:"symbol"`
	StartDate time.Time      `json:"start_date"`
	EndDate   time.Time      `json:"end_date"`
	CreatedAt time.Time      `json:"created_at"`
	Metrics   MetricsSummary `json:"metrics"`
}
