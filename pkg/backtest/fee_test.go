package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeeTable(t *testing.T) {
	cfg := DefaultFeeConfig()

	assert.InDelta(t, 0.0025, Fee(100, 0.01, cfg), 1e-9)
	assert.InDelta(t, 1.5625, Fee(100, 0.50, cfg), 1e-9)
	assert.InDelta(t, 0.0025, Fee(100, 0.99, cfg), 1e-9)
	assert.InDelta(t, 0.0564, Fee(100, 0.05, cfg), 1e-4)
}

func TestFeeBelowMinimumRoundsToZero(t *testing.T) {
	cfg := DefaultFeeConfig()
	assert.Equal(t, 0.0, Fee(1, 0.001, cfg))
}

func TestFeeSymmetry(t *testing.T) {
	cfg := DefaultFeeConfig()
	for _, p := range []float64{0.01, 0.2, 0.35, 0.5} {
		assert.Equal(t, Fee(50, p, cfg), Fee(50, 1-p, cfg))
	}
}

func TestFeeVanishesAtExtremes(t *testing.T) {
	cfg := DefaultFeeConfig()
	assert.Equal(t, 0.0, Fee(100, 0, cfg))
	assert.Equal(t, 0.0, Fee(100, 1, cfg))
}

func TestFeeMaximizedAtHalf(t *testing.T) {
	cfg := DefaultFeeConfig()
	mid := Fee(100, 0.5, cfg)
	for _, p := range []float64{0.1, 0.3, 0.4, 0.6, 0.7, 0.9} {
		assert.LessOrEqual(t, Fee(100, p, cfg), mid)
	}
}

func TestEstimatePolyProbabilityClamped(t *testing.T) {
	assert.Equal(t, 0.95, EstimatePolyProbability(100, 1000))
	assert.Equal(t, 0.05, EstimatePolyProbability(100, 1))
	assert.Equal(t, 0.5, EstimatePolyProbability(100, 100))
}
