package signals

import "fmt"

// singleGenerator is the subset of Generator every single-indicator
// strategy implements; Warmup is used by the backtest engine to enforce
// spec's "warmup + 2 bar margin" minimum-series-length rule and by Combo
// to compute its own aggregate warmup.
type singleGenerator interface {
	Generator
	Warmup() int
}

// BuildSingle constructs the concrete generator for one SingleConfig.
func BuildSingle(cfg SingleConfig) (singleGenerator, error) {
	p := cfg.Params
	switch cfg.Kind {
	case KindRSI:
		return newRSIGenerator(int(p["period"]), p["oversold"], p["overbought"]), nil
	case KindBollinger:
		return newBollingerGenerator(int(p["period"]), p["k"]), nil
	case KindMACD:
		return newMACDGenerator(int(p["fast"]), int(p["slow"]), int(p["signal"])), nil
	case KindEMACross:
		return newEMACrossGenerator(int(p["fast"]), int(p["slow"])), nil
	case KindStochastic:
		return newStochasticGenerator(int(p["k_period"]), int(p["d_period"]), p["oversold"], p["overbought"]), nil
	case KindATRRevert:
		return newATRMeanReversionGenerator(int(p["period"]), p["multiplier"]), nil
	case KindVWAP:
		return newVWAPDeviationGenerator(int(p["period"]), p["threshold_pct"]), nil
	case KindOBV:
		return newOBVSMAGenerator(int(p["period"])), nil
	case KindWilliamsR:
		return newWilliamsRGenerator(int(p["period"]), p["oversold"], p["overbought"]), nil
	case KindADX:
		return newADXGenerator(int(p["period"]), p["threshold"]), nil
	default:
		return nil, fmt.Errorf("unknown single-indicator kind %q", cfg.Kind)
	}
}

// Build constructs the full Generator tree for any StrategyConfig:
// single indicators, Dynamic Combo, web heuristics, and Gabagool all
// resolve through here so the discovery agent never branches on type.
func Build(cfg StrategyConfig) (Generator, error) {
	switch cfg.Type {
	case TypeSingle:
		if cfg.Single == nil {
			return nil, fmt.Errorf("single strategy config missing Single field")
		}
		return BuildSingle(*cfg.Single)
	case TypeCombo:
		if cfg.Combo == nil {
			return nil, fmt.Errorf("combo strategy config missing Combo field")
		}
		return newComboGenerator(*cfg.Combo)
	case TypeWeb:
		if cfg.Web == nil {
			return nil, fmt.Errorf("web strategy config missing Web field")
		}
		return buildWebStrategy(*cfg.Web)
	case TypeGabagool:
		if cfg.Gabagool == nil {
			return nil, fmt.Errorf("gabagool strategy config missing Gabagool field")
		}
		return newGabagoolGenerator(*cfg.Gabagool), nil
	default:
		return nil, fmt.Errorf("unknown strategy type %q", cfg.Type)
	}
}

// presetBuilders maps each StrategyKind to its three presets, used by both
// the grid-scan cycle schedule and manual test fixtures.
var presetBuilders = map[StrategyKind]func() []SingleConfig{
	KindRSI:        rsiPresets,
	KindBollinger:  bollingerPresets,
	KindMACD:       macdPresets,
	KindEMACross:   emaCrossPresets,
	KindStochastic: stochasticPresets,
	KindATRRevert:  atrMeanReversionPresets,
	KindVWAP:       vwapDeviationPresets,
	KindOBV:        obvSMAPresets,
	KindWilliamsR:  williamsRPresets,
	KindADX:        adxPresets,
}

// Presets returns the three preconfigured variants (default/aggressive/
// conservative, by convention the 0th/1st/2nd entries) for kind.
func Presets(kind StrategyKind) []SingleConfig {
	builder, ok := presetBuilders[kind]
	if !ok {
		return nil
	}
	return builder()
}

// AllPresets returns every preset across every single-indicator kind, the
// seed set for Cycle 0's broad grid scan.
func AllPresets() []SingleConfig {
	var out []SingleConfig
	for _, kind := range AllKinds {
		out = append(out, Presets(kind)...)
	}
	return out
}
