package signals

import (
	"math/rand"
)

// paramRange bounds one parameter's legal domain for random generation
// and mutation, keyed per StrategyKind.
type paramRange struct {
	min, max float64
	integer  bool
}

// paramRanges mirrors each indicator's preset spread (see *_presets()
// functions) widened to a sensible random-search domain.
var paramRanges = map[StrategyKind]map[string]paramRange{
	KindRSI: {
		"period":     {min: 5, max: 30, integer: true},
		"oversold":   {min: 15, max: 40},
		"overbought": {min: 60, max: 85},
	},
	KindBollinger: {
		"period": {min: 8, max: 40, integer: true},
		"k":      {min: 1.0, max: 3.0},
	},
	KindMACD: {
		"fast":   {min: 4, max: 20, integer: true},
		"slow":   {min: 12, max: 45, integer: true},
		"signal": {min: 4, max: 12, integer: true},
	},
	KindEMACross: {
		"fast": {min: 3, max: 25, integer: true},
		"slow": {min: 10, max: 60, integer: true},
	},
	KindStochastic: {
		"k_period":   {min: 5, max: 25, integer: true},
		"d_period":   {min: 2, max: 7, integer: true},
		"oversold":   {min: 10, max: 30},
		"overbought": {min: 70, max: 90},
	},
	KindATRRevert: {
		"period":     {min: 7, max: 28, integer: true},
		"multiplier": {min: 1.0, max: 3.0},
	},
	KindVWAP: {
		"period":        {min: 8, max: 50, integer: true},
		"threshold_pct": {min: 0.01, max: 0.05},
	},
	KindOBV: {
		"period": {min: 8, max: 50, integer: true},
	},
	KindWilliamsR: {
		"period":     {min: 7, max: 28, integer: true},
		"oversold":   {min: -95, max: -70},
		"overbought": {min: -30, max: -5},
	},
	KindADX: {
		"period":    {min: 7, max: 28, integer: true},
		"threshold": {min: 15, max: 35},
	},
}

func (r paramRange) sample(rng *rand.Rand) float64 {
	v := r.min + rng.Float64()*(r.max-r.min)
	if r.integer {
		v = float64(int(v + 0.5))
	}
	return v
}

func (r paramRange) clamp(v float64) float64 {
	if v < r.min {
		v = r.min
	}
	if v > r.max {
		v = r.max
	}
	if r.integer {
		v = float64(int(v + 0.5))
	}
	return v
}

// RandomSingle builds a uniformly-random SingleConfig for kind, used by
// Cycle 2's random candidates and, through RandomCombo, by Cycle 2 and the
// exploration share of cycle >= 3.
func RandomSingle(kind StrategyKind, rng *rand.Rand) SingleConfig {
	ranges := paramRanges[kind]
	params := make(map[string]float64, len(ranges))
	for name, r := range ranges {
		params[name] = r.sample(rng)
	}
	return SingleConfig{Kind: kind, Params: params}
}

// RandomKind picks a uniformly-random StrategyKind, used when the cycle
// schedule needs an arbitrary single-indicator family.
func RandomKind(rng *rand.Rand) StrategyKind {
	return AllKinds[rng.Intn(len(AllKinds))]
}

// RandomCombo builds a random 2-4-child Dynamic Combo under a random
// voting mode.
func RandomCombo(rng *rand.Rand) ComboConfig {
	n := 2 + rng.Intn(3) // 2..4
	children := make([]SingleConfig, n)
	for i := range children {
		children[i] = RandomSingle(RandomKind(rng), rng)
	}
	modes := []VoteMode{VoteUnanimous, VoteMajority, VotePrimaryConfirmed}
	return ComboConfig{Children: children, Mode: modes[rng.Intn(len(modes))]}
}

// mutationFactor is the +/-15% perturbation Cycle>=3's mutation step
// applies to each numeric parameter (spec §5's evolutionary search).
const mutationFactor = 0.15

// MutateSingle perturbs every parameter of cfg by up to +/-15%,
// reclamping into its legal domain.
func MutateSingle(cfg SingleConfig, rng *rand.Rand) SingleConfig {
	ranges := paramRanges[cfg.Kind]
	out := make(map[string]float64, len(cfg.Params))
	for name, v := range cfg.Params {
		delta := (rng.Float64()*2 - 1) * mutationFactor
		mutated := v * (1 + delta)
		if r, ok := ranges[name]; ok {
			mutated = r.clamp(mutated)
		}
		out[name] = mutated
	}
	return SingleConfig{Kind: cfg.Kind, Params: out}
}

// CrossoverSingle builds a child by independently choosing each
// parameter from one of the two parents, per-parameter uniform crossover
// (grounded on pkg/backtest/optimization.go's GeneticOptimizer).
func CrossoverSingle(a, b SingleConfig, rng *rand.Rand) SingleConfig {
	if a.Kind != b.Kind {
		if rng.Float64() < 0.5 {
			return a
		}
		return b
	}
	out := make(map[string]float64, len(a.Params))
	for name, av := range a.Params {
		bv, ok := b.Params[name]
		if !ok || rng.Float64() < 0.5 {
			out[name] = av
		} else {
			out[name] = bv
		}
	}
	return SingleConfig{Kind: a.Kind, Params: out}
}
