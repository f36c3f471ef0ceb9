package signals

import "fmt"

// webGenerator is the subset of Generator every web heuristic implements,
// mirroring singleGenerator so Combo-style warmup accounting extends to
// web strategies if they're ever composed.
type webGenerator interface {
	Generator
	Warmup() int
}

func buildWebStrategy(cfg WebConfig) (webGenerator, error) {
	p := cfg.Params
	switch cfg.ID {
	case WebProbabilityEdge:
		return newProbabilityEdgeGenerator(int(p["rsi_period"]), int(p["sma_period"]), int(p["vol_period"]), p["edge_threshold"]), nil
	case WebCatalystMomentum:
		return newCatalystMomentumGenerator(int(p["period"]), p["spike_threshold"], p["trailing_stop_pct"]), nil
	case WebFavoriteCompounder:
		return newFavoriteCompounderGenerator(int(p["period"]), p["min_probability"], p["take_profit"]), nil
	case WebMarketMakingSim:
		return newMarketMakingSimGenerator(int(p["period"]), p["spread"], p["limit"]), nil
	case WebMeanReversionPoly:
		return newMeanReversionPolyGenerator(int(p["period"]), p["entry_dev"], p["exit_dev"]), nil
	default:
		return nil, fmt.Errorf("unknown web strategy id %q", cfg.ID)
	}
}

// AllWebDefaults returns the default-tuned configuration for each of the
// five web-researched heuristics, used to seed Cycle 0's grid scan.
func AllWebDefaults() []WebConfig {
	return []WebConfig{
		probabilityEdgeDefaultConfig(),
		catalystMomentumDefaultConfig(),
		favoriteCompounderDefaultConfig(),
		marketMakingSimDefaultConfig(),
		meanReversionPolyDefaultConfig(),
	}
}
