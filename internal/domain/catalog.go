package domain

// DefaultCatalog returns the published comparison set: HODL baseline, three
// dip depths, the six exit-rule variants of the 30% dip, the indicator
// strategies, and the two DCA variants. Fifteen configs total.
func DefaultCatalog() []StrategyConfig {
	return []StrategyConfig{
		{Kind: StrategyHODL},

		{Kind: StrategyBuyTheDip, DipPct: f64(10)},
		{Kind: StrategyBuyTheDip, DipPct: f64(20)},
		{Kind: StrategyBuyTheDip, DipPct: f64(30)},

		{Kind: StrategyBuyTheDip, DipPct: f64(30), SellRule: SellRuleProfitTarget},
		{Kind: StrategyBuyTheDip, DipPct: f64(30), SellRule: SellRuleSMACross},
		{Kind: StrategyBuyTheDip, DipPct: f64(30), SellRule: SellRuleEMACross},
		{Kind: StrategyBuyTheDip, DipPct: f64(30), SellRule: SellRuleBollingerMiddle},
		{Kind: StrategyBuyTheDip, DipPct: f64(30), SellRule: SellRuleEMACrossover},
		{Kind: StrategyBuyTheDip, DipPct: f64(30), SellRule: SellRuleSMADistance},

		{Kind: StrategyRSIOversold, RSIThreshold: f64(30)},
		{Kind: StrategyMACrossover, FastWindow: i(50), SlowWindow: i(200)},
		{Kind: StrategyBollingerBands, BollingerWindow: i(20)},

		{Kind: StrategyDCA, FrequencyDays: i(30)},
		{Kind: StrategyVolAdjustedDCA, FrequencyDays: i(30)},
	}
}

func f64(v float64) *float64 { return &v }

func i(v int) *int { return &v }
