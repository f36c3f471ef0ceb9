package discovery

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ajitpratap0/polydiscover/internal/signals"
)

var allVoteModes = []signals.VoteMode{signals.VoteUnanimous, signals.VoteMajority, signals.VotePrimaryConfirmed}

// combinations returns every k-element subset of {0,...,n-1}, as index
// slices, in lexicographic order — the building block for the grid scan's
// C(10,2)/C(10,3)/C(10,4) indicator combos (spec §4.3, Cycle 0 phase 1).
func combinations(n, k int) [][]int {
	if k <= 0 || k > n {
		return nil
	}
	var out [][]int
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]int, k)
		copy(combo, idx)
		out = append(out, combo)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[i] + (j - i)
		}
	}
	return out
}

func singleCandidate(cfg signals.SingleConfig) (Candidate, error) {
	gen, err := signals.BuildSingle(cfg)
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{
		Config:       signals.StrategyConfig{Type: signals.TypeSingle, Single: &cfg},
		StrategyName: gen.Name(),
		StrategyTag:  "single:" + string(cfg.Kind),
	}, nil
}

func comboCandidate(children []signals.SingleConfig, mode signals.VoteMode) (Candidate, error) {
	combo := signals.ComboConfig{Children: children, Mode: mode}
	gen, err := signals.Build(signals.StrategyConfig{Type: signals.TypeCombo, Combo: &combo})
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{
		Config:       signals.StrategyConfig{Type: signals.TypeCombo, Combo: &combo},
		StrategyName: gen.Name(),
		StrategyTag:  "combo",
	}, nil
}

func webCandidate(cfg signals.WebConfig) (Candidate, error) {
	gen, err := signals.Build(signals.StrategyConfig{Type: signals.TypeWeb, Web: &cfg})
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{
		Config:       signals.StrategyConfig{Type: signals.TypeWeb, Web: &cfg},
		StrategyName: gen.Name(),
		StrategyTag:  "web:" + string(cfg.ID),
	}, nil
}

func gabagoolCandidate(params map[string]float64) (Candidate, error) {
	cfg := signals.GabagoolConfig{Params: params}
	gen, err := signals.Build(signals.StrategyConfig{Type: signals.TypeGabagool, Gabagool: &cfg})
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{
		Config:       signals.StrategyConfig{Type: signals.TypeGabagool, Gabagool: &cfg},
		StrategyName: gen.Name(),
		StrategyTag:  "gabagool",
	}, nil
}

// scaleParams multiplies every value in params by factor, used to derive
// aggressive/conservative variants of a web strategy's default config
// (the web heuristics package exposes only one default per strategy).
func scaleParams(params map[string]float64, factor float64) map[string]float64 {
	out := make(map[string]float64, len(params))
	for k, v := range params {
		out[k] = v * factor
	}
	return out
}

// generateCycle0Phase1 enumerates the deterministic broad-scan grid: every
// single-indicator preset, every 2/3/4-indicator combo at a sample of
// variants and voting modes, every web-strategy variant, and a Gabagool
// parameter grid (spec §4.3).
func generateCycle0Phase1() ([]Candidate, error) {
	var out []Candidate

	for _, kind := range signals.AllKinds {
		for _, preset := range signals.Presets(kind) {
			c, err := singleCandidate(preset)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}

	n := len(signals.AllKinds)
	for _, pair := range combinations(n, 2) {
		kindA, kindB := signals.AllKinds[pair[0]], signals.AllKinds[pair[1]]
		presetsA, presetsB := signals.Presets(kindA), signals.Presets(kindB)
		for variant := 0; variant < 3 && variant < len(presetsA) && variant < len(presetsB); variant++ {
			for _, mode := range allVoteModes {
				c, err := comboCandidate([]signals.SingleConfig{presetsA[variant], presetsB[variant]}, mode)
				if err != nil {
					return nil, err
				}
				out = append(out, c)
			}
		}
	}

	for _, triple := range combinations(n, 3) {
		kinds := []signals.StrategyKind{signals.AllKinds[triple[0]], signals.AllKinds[triple[1]], signals.AllKinds[triple[2]]}
		for variant := 0; variant < 3; variant++ {
			children := make([]signals.SingleConfig, 0, 3)
			ok := true
			for _, kind := range kinds {
				presets := signals.Presets(kind)
				if variant >= len(presets) {
					ok = false
					break
				}
				children = append(children, presets[variant])
			}
			if !ok {
				continue
			}
			for _, mode := range allVoteModes {
				c, err := comboCandidate(children, mode)
				if err != nil {
					return nil, err
				}
				out = append(out, c)
			}
		}
	}

	for _, quad := range combinations(n, 4) {
		children := make([]signals.SingleConfig, 0, 4)
		for _, i := range quad {
			children = append(children, signals.Presets(signals.AllKinds[i])[0])
		}
		c, err := comboCandidate(children, signals.VoteMajority)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	for _, web := range signals.AllWebDefaults() {
		for _, factor := range []float64{0.8, 1.0, 1.2} {
			cfg := signals.WebConfig{ID: web.ID, Params: scaleParams(web.Params, factor)}
			c, err := webCandidate(cfg)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}

	periods := []float64{5, 10, 15, 20}
	feeRates := []float64{0.15, 0.25, 0.35}
	maxOrderSizes := []float64{0.5, 1.0}
	feeExponents := []float64{1.5, 2.0}
	for _, period := range periods {
		for _, feeRate := range feeRates {
			for _, maxOrder := range maxOrderSizes {
				for _, feeExp := range feeExponents {
					c, err := gabagoolCandidate(map[string]float64{
						"period": period, "fee_rate": feeRate,
						"max_order_size": maxOrder, "fee_exponent": feeExp,
					})
					if err != nil {
						return nil, err
					}
					out = append(out, c)
				}
			}
		}
	}

	return out, nil
}

// generateCycle0Phase2 produces +/-delta variants of every numeric
// parameter in each of the top 20 results (spec §4.3: delta = 1 tick of
// the parameter's grid).
func generateCycle0Phase2(top []TopEntry) ([]Candidate, error) {
	limit := 20
	if len(top) < limit {
		limit = len(top)
	}
	var out []Candidate
	for _, entry := range top[:limit] {
		variants, err := perturbCandidate(entry.Candidate)
		if err != nil {
			return nil, err
		}
		out = append(out, variants...)
	}
	return out, nil
}

// tick is a coarse +/-delta step for a single parameter value: integer
// tick for whole-number-looking values (periods, windows), 5% otherwise.
func tick(v float64) float64 {
	if v == math.Trunc(v) {
		return 1
	}
	return math.Abs(v) * 0.05
}

func perturbParams(params map[string]float64) []map[string]float64 {
	var out []map[string]float64
	for key := range params {
		for _, sign := range []float64{1, -1} {
			variant := make(map[string]float64, len(params))
			for k, v := range params {
				variant[k] = v
			}
			variant[key] = params[key] + sign*tick(params[key])
			out = append(out, variant)
		}
	}
	return out
}

// perturbCandidate builds the one-parameter-at-a-time +/-delta neighbours
// of c, independent of its StrategyType (spec §4.3 phase 2's refinement
// and the mutation helpers below share this shape).
func perturbCandidate(c Candidate) ([]Candidate, error) {
	var out []Candidate
	switch c.Config.Type {
	case signals.TypeSingle:
		for _, params := range perturbParams(c.Config.Single.Params) {
			cand, err := singleCandidate(signals.SingleConfig{Kind: c.Config.Single.Kind, Params: params})
			if err != nil {
				return nil, err
			}
			out = append(out, cand)
		}
	case signals.TypeCombo:
		for i, child := range c.Config.Combo.Children {
			for _, params := range perturbParams(child.Params) {
				children := make([]signals.SingleConfig, len(c.Config.Combo.Children))
				copy(children, c.Config.Combo.Children)
				children[i] = signals.SingleConfig{Kind: child.Kind, Params: params}
				cand, err := comboCandidate(children, c.Config.Combo.Mode)
				if err != nil {
					return nil, err
				}
				out = append(out, cand)
			}
		}
	case signals.TypeWeb:
		for _, params := range perturbParams(c.Config.Web.Params) {
			cand, err := webCandidate(signals.WebConfig{ID: c.Config.Web.ID, Params: params})
			if err != nil {
				return nil, err
			}
			out = append(out, cand)
		}
	case signals.TypeGabagool:
		for _, params := range perturbParams(c.Config.Gabagool.Params) {
			cand, err := gabagoolCandidate(params)
			if err != nil {
				return nil, err
			}
			out = append(out, cand)
		}
	}
	return out, nil
}

// generateCycle1 interpolates between neighbouring grid values, adds
// quad-combos under Unanimous/PrimaryConfirmed, and mixes in aggressive
// parameter pairs (spec §4.3, Cycle 1).
func generateCycle1() ([]Candidate, error) {
	var out []Candidate

	for _, kind := range signals.AllKinds {
		presets := signals.Presets(kind)
		if len(presets) < 3 {
			continue
		}
		for _, pair := range [][2]int{{0, 1}, {0, 2}} {
			mid := midpointParams(presets[pair[0]].Params, presets[pair[1]].Params)
			cand, err := singleCandidate(signals.SingleConfig{Kind: kind, Params: mid})
			if err != nil {
				return nil, err
			}
			out = append(out, cand)
		}
	}

	n := len(signals.AllKinds)
	for _, quad := range combinations(n, 4) {
		children := make([]signals.SingleConfig, 0, 4)
		for _, i := range quad {
			children = append(children, signals.Presets(signals.AllKinds[i])[0])
		}
		for _, mode := range []signals.VoteMode{signals.VoteUnanimous, signals.VotePrimaryConfirmed} {
			cand, err := comboCandidate(children, mode)
			if err != nil {
				return nil, err
			}
			out = append(out, cand)
		}
	}

	for _, pair := range combinations(n, 2) {
		kindA, kindB := signals.AllKinds[pair[0]], signals.AllKinds[pair[1]]
		presetsA, presetsB := signals.Presets(kindA), signals.Presets(kindB)
		if len(presetsA) < 2 || len(presetsB) < 2 {
			continue
		}
		cand, err := comboCandidate([]signals.SingleConfig{presetsA[1], presetsB[1]}, signals.VoteMajority)
		if err != nil {
			return nil, err
		}
		out = append(out, cand)
	}

	return out, nil
}

func midpointParams(a, b map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(a))
	for k, av := range a {
		bv := av
		if v, ok := b[k]; ok {
			bv = v
		}
		out[k] = (av + bv) / 2
	}
	return out
}

// generateCycle2 widens parameter ranges, mixes aggressive/conservative
// combo pairs, and samples uniformly random combos/Gabagool configs
// (spec §4.3, Cycle 2).
func generateCycle2(rng *rand.Rand) ([]Candidate, error) {
	var out []Candidate

	n := len(signals.AllKinds)
	for _, pair := range combinations(n, 2) {
		kindA, kindB := signals.AllKinds[pair[0]], signals.AllKinds[pair[1]]
		presetsA, presetsB := signals.Presets(kindA), signals.Presets(kindB)
		if len(presetsA) < 3 || len(presetsB) < 3 {
			continue
		}
		cand, err := comboCandidate([]signals.SingleConfig{presetsA[1], presetsB[2]}, signals.VoteMajority)
		if err != nil {
			return nil, err
		}
		out = append(out, cand)
	}

	for _, kind := range signals.AllKinds {
		for i := 0; i < 2; i++ {
			cand, err := singleCandidate(signals.RandomSingle(kind, rng))
			if err != nil {
				return nil, err
			}
			out = append(out, cand)
		}
	}

	for i := 0; i < 200; i++ {
		combo := signals.RandomCombo(rng)
		cand, err := comboCandidate(combo.Children, combo.Mode)
		if err != nil {
			return nil, err
		}
		out = append(out, cand)
	}

	for i := 0; i < 10; i++ {
		cand, err := gabagoolCandidate(randomGabagoolParams(rng))
		if err != nil {
			return nil, err
		}
		out = append(out, cand)
	}

	return out, nil
}

func randomGabagoolParams(rng *rand.Rand) map[string]float64 {
	return map[string]float64{
		"period":         float64(5 + rng.Intn(20)),
		"fee_rate":       0.1 + rng.Float64()*0.3,
		"fee_exponent":   1.0 + rng.Float64()*2.0,
		"max_order_size": 0.25 + rng.Float64()*1.5,
	}
}

// evolutionaryBudget is spec §4.3's `min(1000, 300 + 50*cycle)`.
func evolutionaryBudget(cycle int) int {
	budget := 300 + 50*cycle
	if budget > 1000 {
		budget = 1000
	}
	return budget
}

// generateEvolutionaryCycle implements Cycle >= 3's ML-guided evolutionary
// search: 60% mutation of top-30 entries, 20% crossover of two same-tag
// top-30 parents, 20% fresh random exploration (spec §4.3).
func generateEvolutionaryCycle(top []TopEntry, cycle int, rng *rand.Rand) ([]Candidate, error) {
	budget := evolutionaryBudget(cycle)
	if len(top) == 0 {
		return generateCycle2(rng)
	}

	mutationCount := int(float64(budget) * 0.6)
	crossoverCount := int(float64(budget) * 0.2)
	explorationCount := budget - mutationCount - crossoverCount

	byTag := (&topSet{entries: top}).byTag()

	var out []Candidate
	for i := 0; i < mutationCount; i++ {
		parent := top[rng.Intn(len(top))]
		cand, err := mutateCandidate(parent.Candidate, rng)
		if err != nil {
			return nil, err
		}
		out = append(out, cand)
	}

	for i := 0; i < crossoverCount; i++ {
		_, parents := pickCrossoverTag(byTag, rng)
		if parents == nil {
			cand, err := explorationCandidate(rng)
			if err != nil {
				return nil, err
			}
			out = append(out, cand)
			continue
		}
		a := parents[rng.Intn(len(parents))]
		b := parents[rng.Intn(len(parents))]
		cand, err := crossoverCandidate(a.Candidate, b.Candidate, rng)
		if err != nil {
			return nil, err
		}
		out = append(out, cand)
	}

	for i := 0; i < explorationCount; i++ {
		cand, err := explorationCandidate(rng)
		if err != nil {
			return nil, err
		}
		out = append(out, cand)
	}

	return out, nil
}

func pickCrossoverTag(byTag map[string][]TopEntry, rng *rand.Rand) (string, []TopEntry) {
	var tags []string
	for tag, entries := range byTag {
		if len(entries) >= 2 {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return "", nil
	}
	tag := tags[rng.Intn(len(tags))]
	return tag, byTag[tag]
}

// explorationCandidate is Cycle>=3's 20% exploration slice: 95% random
// DynamicCombo of size 2-4, 5% random Gabagool.
func explorationCandidate(rng *rand.Rand) (Candidate, error) {
	if rng.Float64() < 0.05 {
		return gabagoolCandidate(randomGabagoolParams(rng))
	}
	combo := signals.RandomCombo(rng)
	return comboCandidate(combo.Children, combo.Mode)
}

func mutateCandidate(c Candidate, rng *rand.Rand) (Candidate, error) {
	switch c.Config.Type {
	case signals.TypeSingle:
		return singleCandidate(signals.MutateSingle(*c.Config.Single, rng))
	case signals.TypeCombo:
		children := make([]signals.SingleConfig, len(c.Config.Combo.Children))
		for i, child := range c.Config.Combo.Children {
			children[i] = signals.MutateSingle(child, rng)
		}
		return comboCandidate(children, c.Config.Combo.Mode)
	case signals.TypeWeb:
		return webCandidate(signals.WebConfig{ID: c.Config.Web.ID, Params: mutateParams(c.Config.Web.Params, rng)})
	case signals.TypeGabagool:
		return gabagoolCandidate(mutateParams(c.Config.Gabagool.Params, rng))
	default:
		return Candidate{}, fmt.Errorf("cannot mutate strategy type %q", c.Config.Type)
	}
}

// mutateParams is MutateSingle's +/-15% perturbation, generalized to
// parameter maps that have no registered paramRange (web heuristics,
// Gabagool) and so skip range-clamping.
func mutateParams(params map[string]float64, rng *rand.Rand) map[string]float64 {
	const factor = 0.15
	out := make(map[string]float64, len(params))
	for k, v := range params {
		delta := (rng.Float64()*2 - 1) * factor
		out[k] = v * (1 + delta)
	}
	return out
}

func crossoverCandidate(a, b Candidate, rng *rand.Rand) (Candidate, error) {
	if a.Config.Type != b.Config.Type {
		if rng.Float64() < 0.5 {
			return a, nil
		}
		return b, nil
	}
	switch a.Config.Type {
	case signals.TypeSingle:
		return singleCandidate(signals.CrossoverSingle(*a.Config.Single, *b.Config.Single, rng))
	case signals.TypeCombo:
		if len(a.Config.Combo.Children) != len(b.Config.Combo.Children) {
			if rng.Float64() < 0.5 {
				return a, nil
			}
			return b, nil
		}
		children := make([]signals.SingleConfig, len(a.Config.Combo.Children))
		for i := range children {
			children[i] = signals.CrossoverSingle(a.Config.Combo.Children[i], b.Config.Combo.Children[i], rng)
		}
		mode := a.Config.Combo.Mode
		if rng.Float64() < 0.5 {
			mode = b.Config.Combo.Mode
		}
		return comboCandidate(children, mode)
	case signals.TypeWeb:
		return webCandidate(signals.WebConfig{ID: a.Config.Web.ID, Params: crossoverParams(a.Config.Web.Params, b.Config.Web.Params, rng)})
	case signals.TypeGabagool:
		return gabagoolCandidate(crossoverParams(a.Config.Gabagool.Params, b.Config.Gabagool.Params, rng))
	default:
		return Candidate{}, fmt.Errorf("cannot crossover strategy type %q", a.Config.Type)
	}
}

// crossoverParams is CrossoverSingle's per-parameter uniform choice,
// generalized to parameter maps that carry no StrategyKind.
func crossoverParams(a, b map[string]float64, rng *rand.Rand) map[string]float64 {
	out := make(map[string]float64, len(a))
	for k, av := range a {
		if bv, ok := b[k]; ok && rng.Float64() < 0.5 {
			out[k] = bv
		} else {
			out[k] = av
		}
	}
	return out
}
