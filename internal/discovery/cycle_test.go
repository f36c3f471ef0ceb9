package discovery

import (
	"math/rand"
	"testing"

	"github.com/ajitpratap0/polydiscover/internal/signals"
	"github.com/stretchr/testify/require"
)

func TestCombinationsCountsMatchBinomial(t *testing.T) {
	require.Len(t, combinations(10, 2), 45)
	require.Len(t, combinations(10, 3), 120)
	require.Len(t, combinations(10, 4), 210)
}

func TestGenerateCycle0Phase1ProducesCandidatesAcrossAllTags(t *testing.T) {
	candidates, err := generateCycle0Phase1()
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	tags := map[string]bool{}
	for _, c := range candidates {
		tags[c.StrategyTag] = true
	}
	require.True(t, tags["single:rsi"])
	require.True(t, tags["combo"])
	require.True(t, tags["gabagool"])
}

func TestGenerateCycle0Phase2PerturbsTop20(t *testing.T) {
	candidates, err := generateCycle0Phase1()
	require.NoError(t, err)

	var top []TopEntry
	for i, c := range candidates[:25] {
		top = append(top, TopEntry{Candidate: c, Score: float64(100 - i)})
	}

	phase2, err := generateCycle0Phase2(top)
	require.NoError(t, err)
	require.NotEmpty(t, phase2)
}

func TestGenerateCycle1ProducesQuadCombos(t *testing.T) {
	candidates, err := generateCycle1()
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		require.NotEmpty(t, c.StrategyName)
	}
}

func TestGenerateCycle2ProducesRandomCombos(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	candidates, err := generateCycle2(rng)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
}

func TestEvolutionaryBudgetCapsAtThousand(t *testing.T) {
	require.Equal(t, 300, evolutionaryBudget(0))
	require.Equal(t, 350, evolutionaryBudget(1))
	require.Equal(t, 1000, evolutionaryBudget(100))
}

func TestGenerateEvolutionaryCycleRoughSplit(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	single := signals.SingleConfig{Kind: signals.KindRSI, Params: map[string]float64{"period": 14, "oversold": 30, "overbought": 70}}
	cand, err := singleCandidate(single)
	require.NoError(t, err)

	var top []TopEntry
	for i := 0; i < 30; i++ {
		top = append(top, TopEntry{Candidate: cand, StrategyTag: cand.StrategyTag, Score: float64(i)})
	}

	candidates, err := generateEvolutionaryCycle(top, 3, rng)
	require.NoError(t, err)
	require.Equal(t, evolutionaryBudget(3), len(candidates))
}

func TestMutateCandidatePreservesStrategyType(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	single := signals.SingleConfig{Kind: signals.KindEMACross, Params: map[string]float64{"fast": 10, "slow": 30}}
	cand, err := singleCandidate(single)
	require.NoError(t, err)

	mutated, err := mutateCandidate(cand, rng)
	require.NoError(t, err)
	require.Equal(t, signals.TypeSingle, mutated.Config.Type)
	require.Equal(t, signals.KindEMACross, mutated.Config.Single.Kind)
}

func TestCrossoverCandidateSameKindMixesParams(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a, err := singleCandidate(signals.SingleConfig{Kind: signals.KindRSI, Params: map[string]float64{"period": 10, "oversold": 20, "overbought": 80}})
	require.NoError(t, err)
	b, err := singleCandidate(signals.SingleConfig{Kind: signals.KindRSI, Params: map[string]float64{"period": 20, "oversold": 30, "overbought": 70}})
	require.NoError(t, err)

	child, err := crossoverCandidate(a, b, rng)
	require.NoError(t, err)
	require.Equal(t, signals.KindRSI, child.Config.Single.Kind)
}
