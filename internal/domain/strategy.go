package domain

// StrategyKind identifies a buy-side strategy.
type StrategyKind string

// Strategy kind constants.
const (
	StrategyHODL           StrategyKind = "HODL"
	StrategyBuyTheDip      StrategyKind = "BUY_THE_DIP"
	StrategyRSIOversold    StrategyKind = "RSI_OVERSOLD"
	StrategyMACrossover    StrategyKind = "MA_CROSSOVER"
	StrategyBollingerBands StrategyKind = "BOLLINGER_BANDS"
	StrategyDCA            StrategyKind = "DCA"
	StrategyVolAdjustedDCA StrategyKind = "VOL_ADJUSTED_DCA"
	StrategyFibSupport     StrategyKind = "FIB_SUPPORT"
)

// SellRuleKind identifies an optional exit rule attached to a buy strategy.
type SellRuleKind string

// Sell rule constants.
const (
	SellRuleNone            SellRuleKind = "NONE"
	SellRuleProfitTarget    SellRuleKind = "PROFIT_TARGET"
	SellRuleSMACross        SellRuleKind = "SMA_CROSS"
	SellRuleEMACross        SellRuleKind = "EMA_CROSS"
	SellRuleBollingerMiddle SellRuleKind = "BOLLINGER_MIDDLE"
	SellRuleEMACrossover    SellRuleKind = "EMA_CROSSOVER"
	SellRuleSMADistance     SellRuleKind = "SMA_DISTANCE"
)

// Shared configuration defaults.
const (
	DefaultInitialCapital = 10000.0
	DefaultFeeRate        = 0.001
	DefaultMaxBuyCount    = 10
	DefaultBuyFraction    = 0.10 // buy unit = 10% of initial capital
)

// StrategyConfig is a named strategy variant. Only the parameters relevant
// to the configured Kind (and SellRule) are consulted; required parameters
// are validated by strategy.FromConfig.
type StrategyConfig struct {
	Kind     StrategyKind
	SellRule SellRuleKind

	// Common parameters. Zero values fall back to the defaults above.
	InitialCapital float64
	FeeRate        *float64
	MaxBuyCount    int

	// BUY_THE_DIP parameters
	DipPct *float64 // drop from running ATH, in percent (10 = -10%)

	// RSI_OVERSOLD parameters
	RSIThreshold *float64
	RSIPeriod    *int // default 14

	// MA_CROSSOVER parameters
	FastWindow *int
	SlowWindow *int

	// BOLLINGER_BANDS parameters
	BollingerWindow *int     // default 20
	BollingerK      *float64 // default 2

	// DCA / VOL_ADJUSTED_DCA parameters
	FrequencyDays *int

	// FIB_SUPPORT parameters
	FibLevel    *float64 // support level in (0, 1), e.g. 0.382
	FibLookback *int     // default 90

	// Sell rule parameters
	ProfitTargetPct *float64 // PROFIT_TARGET, default 0.25
	SellWindow      *int     // SMA_CROSS (default 50), EMA_CROSS (default 21)
	DistancePct     *float64 // SMA_DISTANCE, default 0.20 above the 200-day SMA
}

// Capital returns the configured initial capital or the default.
func (c StrategyConfig) Capital() float64 {
	if c.InitialCapital > 0 {
		return c.InitialCapital
	}
	return DefaultInitialCapital
}

// Fee returns the configured fee rate or the default.
func (c StrategyConfig) Fee() float64 {
	if c.FeeRate != nil {
		return *c.FeeRate
	}
	return DefaultFeeRate
}

// MaxBuys returns the configured concurrent-buy cap or the default.
func (c StrategyConfig) MaxBuys() int {
	if c.MaxBuyCount > 0 {
		return c.MaxBuyCount
	}
	return DefaultMaxBuyCount
}
