package reporting

import "time"

// Report represents a strategy comparison report for one symbol.
type Report struct {
	// Metadata
	GeneratedAt   time.Time
	Symbol        string
	StartDate     time.Time
	EndDate       time.Time
	StrategyCount int

	// Strategy rows (sorted by total return, best first)
	Rows []SummaryRow

	// Insights derived from the rows
	Insights Insights

	// Per-calendar-year returns, one row per (strategy, year)
	Yearly []YearlyRow
}

// SummaryRow represents one strategy's metrics in the comparison table.
type SummaryRow struct {
	Strategy       string
	TotalReturnPct float64
	CAGRPct        float64
	SharpeRatio    float64
	MaxDrawdownPct float64
	VolatilityPct  float64
	WinRatePct     float64
	TradeCount     int
	FinalValue     float64
}

// Insights highlights the standout strategies of a report.
type Insights struct {
	BestStrategy  string
	BestReturnPct float64

	// Buy-and-hold baseline and the best strategy's edge over it.
	HODLReturnPct float64
	BestVsHODLPct float64
	BeatsHODL     bool

	LowestDrawdownStrategy string
	LowestDrawdownPct      float64

	BestSharpeStrategy string
	BestSharpe         float64
}

// YearlyRow is one strategy's return over a single calendar year.
type YearlyRow struct {
	Strategy  string
	Year      int
	ReturnPct float64
}
