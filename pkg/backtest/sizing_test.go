package backtest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFixedSizingCapsToEquity(t *testing.T) {
	mode := FixedSizing(decimal.NewFromInt(1000))
	equity := decimal.NewFromInt(100)
	assert.True(t, mode.RiskAmount(equity, 0.8).Equal(equity))
}

func TestFixedSizingUsesAmountWhenBelowEquity(t *testing.T) {
	mode := FixedSizing(decimal.NewFromInt(10))
	equity := decimal.NewFromInt(1000)
	assert.True(t, mode.RiskAmount(equity, 0.5).Equal(decimal.NewFromInt(10)))
}

func TestKellySizingScalesByFractionAndConfidence(t *testing.T) {
	mode := KellySizing(0.25)
	equity := decimal.NewFromInt(1000)
	got := mode.RiskAmount(equity, 0.5)
	want := decimal.NewFromFloat(0.25 * 0.5 * 1000)
	assert.True(t, got.Equal(want))
}

func TestConfidenceScaledSizing(t *testing.T) {
	mode := ConfidenceScaledSizing(0.1, 1.0)
	equity := decimal.NewFromInt(1000)
	got := mode.RiskAmount(equity, 0.3)
	// base * (1 + m*(confidence-0.3)) with confidence==0.3 reduces to base*equity.
	assert.True(t, got.Equal(decimal.NewFromFloat(100)))
}

func TestSizingNeverExceedsEquity(t *testing.T) {
	mode := KellySizing(5) // deliberately aggressive fraction
	equity := decimal.NewFromInt(10)
	got := mode.RiskAmount(equity, 1.0)
	assert.True(t, got.LessThanOrEqual(equity))
}
