package strategy

import (
	"errors"
	"fmt"

	"crypto-strategy-lab/internal/domain"
)

// Factory errors.
var (
	ErrUnknownStrategyKind  = errors.New("unknown strategy kind")
	ErrUnknownSellRule      = errors.New("unknown sell rule")
	ErrUnsupportedSellRule  = errors.New("strategy kind does not support sell rules")
	ErrInvalidSellRuleParam = errors.New("invalid sell rule parameter")
	ErrMissingDipPct        = errors.New("BUY_THE_DIP requires DipPct")
	ErrMissingRSIThreshold  = errors.New("RSI_OVERSOLD requires RSIThreshold")
	ErrMissingMAWindows     = errors.New("MA_CROSSOVER requires FastWindow and SlowWindow")
	ErrMissingFrequency     = errors.New("DCA strategies require FrequencyDays")
	ErrMissingFibLevel      = errors.New("FIB_SUPPORT requires FibLevel")
	ErrInvalidParameter     = errors.New("invalid strategy parameter")
)

// Default windows for kinds with optional windows.
const (
	defaultRSIPeriod    = 14
	defaultBollingerWin = 20
	defaultBollingerK   = 2.0
	defaultFibLookback  = 90
	volDCAWindow        = 30
)

// FromConfig builds a Strategy from its configuration, validating the
// required parameters per kind. Sell rules are only supported by kinds that
// accumulate a position (currently BUY_THE_DIP); any other kind carrying a
// sell rule fails validation rather than silently ignoring it.
func FromConfig(cfg domain.StrategyConfig) (Strategy, error) {
	if cfg.Kind != domain.StrategyBuyTheDip {
		if cfg.SellRule != domain.SellRuleNone && cfg.SellRule != "" {
			return nil, fmt.Errorf("%w: %q with sell rule %q", ErrUnsupportedSellRule, cfg.Kind, cfg.SellRule)
		}
	}

	switch cfg.Kind {
	case domain.StrategyHODL:
		return &HODL{capital: cfg.Capital()}, nil

	case domain.StrategyBuyTheDip:
		if cfg.DipPct == nil {
			return nil, ErrMissingDipPct
		}
		if *cfg.DipPct <= 0 || *cfg.DipPct >= 100 {
			return nil, fmt.Errorf("%w: dip percent must be in (0, 100)", ErrInvalidParameter)
		}
		return &BuyTheDip{cfg: cfg, dipPct: *cfg.DipPct}, nil

	case domain.StrategyRSIOversold:
		if cfg.RSIThreshold == nil {
			return nil, ErrMissingRSIThreshold
		}
		period := defaultRSIPeriod
		if cfg.RSIPeriod != nil {
			period = *cfg.RSIPeriod
		}
		if period < 2 {
			return nil, fmt.Errorf("%w: RSI period must be at least 2", ErrInvalidParameter)
		}
		return &RSIOversold{cfg: cfg, threshold: *cfg.RSIThreshold, period: period}, nil

	case domain.StrategyMACrossover:
		if cfg.FastWindow == nil || cfg.SlowWindow == nil {
			return nil, ErrMissingMAWindows
		}
		if *cfg.FastWindow <= 0 || *cfg.SlowWindow <= *cfg.FastWindow {
			return nil, fmt.Errorf("%w: slow window must exceed fast window", ErrInvalidParameter)
		}
		return &MACrossover{fast: *cfg.FastWindow, slow: *cfg.SlowWindow}, nil

	case domain.StrategyBollingerBands:
		window := defaultBollingerWin
		if cfg.BollingerWindow != nil {
			window = *cfg.BollingerWindow
		}
		k := defaultBollingerK
		if cfg.BollingerK != nil {
			k = *cfg.BollingerK
		}
		if window < 2 || k <= 0 {
			return nil, fmt.Errorf("%w: bollinger window must be >= 2 and k positive", ErrInvalidParameter)
		}
		return &BollingerBuy{cfg: cfg, window: window, k: k}, nil

	case domain.StrategyDCA:
		if cfg.FrequencyDays == nil {
			return nil, ErrMissingFrequency
		}
		if *cfg.FrequencyDays <= 0 {
			return nil, fmt.Errorf("%w: frequency must be positive", ErrInvalidParameter)
		}
		return &DCA{capital: cfg.Capital(), frequency: *cfg.FrequencyDays}, nil

	case domain.StrategyVolAdjustedDCA:
		if cfg.FrequencyDays == nil {
			return nil, ErrMissingFrequency
		}
		if *cfg.FrequencyDays <= 0 {
			return nil, fmt.Errorf("%w: frequency must be positive", ErrInvalidParameter)
		}
		return &VolAdjustedDCA{capital: cfg.Capital(), frequency: *cfg.FrequencyDays}, nil

	case domain.StrategyFibSupport:
		if cfg.FibLevel == nil {
			return nil, ErrMissingFibLevel
		}
		if *cfg.FibLevel <= 0 || *cfg.FibLevel >= 1 {
			return nil, fmt.Errorf("%w: fib level must be in (0, 1)", ErrInvalidParameter)
		}
		lookback := defaultFibLookback
		if cfg.FibLookback != nil {
			lookback = *cfg.FibLookback
		}
		if lookback < 2 {
			return nil, fmt.Errorf("%w: fib lookback must be at least 2", ErrInvalidParameter)
		}
		return &FibSupport{cfg: cfg, level: *cfg.FibLevel, lookback: lookback}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategyKind, cfg.Kind)
	}
}
