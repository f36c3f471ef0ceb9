package discovery

import (
	"testing"

	"github.com/ajitpratap0/polydiscover/internal/signals"
	"github.com/ajitpratap0/polydiscover/pkg/backtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func rsiConfig(period int) signals.StrategyConfig {
	single := signals.SingleConfig{Kind: signals.KindRSI, Params: map[string]float64{
		"period": float64(period), "oversold": 30, "overbought": 70,
	}}
	return signals.StrategyConfig{Type: signals.TypeSingle, Single: &single}
}

func TestFingerprintDeterministic(t *testing.T) {
	cfg := rsiConfig(14)
	sizing := backtest.FixedSizing(decimal.NewFromInt(10))

	fp1, err := Fingerprint(cfg, "BTCUSDT", 365, decimal.NewFromInt(1000), sizing)
	require.NoError(t, err)
	fp2, err := Fingerprint(cfg, "BTCUSDT", 365, decimal.NewFromInt(1000), sizing)
	require.NoError(t, err)
	require.Equal(t, fp1, fp2)
}

func TestFingerprintDiffersOnSymbol(t *testing.T) {
	cfg := rsiConfig(14)
	sizing := backtest.FixedSizing(decimal.NewFromInt(10))

	fpBTC, err := Fingerprint(cfg, "BTCUSDT", 365, decimal.NewFromInt(1000), sizing)
	require.NoError(t, err)
	fpETH, err := Fingerprint(cfg, "ETHUSDT", 365, decimal.NewFromInt(1000), sizing)
	require.NoError(t, err)
	require.NotEqual(t, fpBTC, fpETH)
}

func TestFingerprintDiffersOnSizingMode(t *testing.T) {
	cfg := rsiConfig(14)

	fpFixed, err := Fingerprint(cfg, "BTCUSDT", 365, decimal.NewFromInt(1000), backtest.FixedSizing(decimal.NewFromInt(10)))
	require.NoError(t, err)
	fpKelly, err := Fingerprint(cfg, "BTCUSDT", 365, decimal.NewFromInt(1000), backtest.KellySizing(0.1))
	require.NoError(t, err)
	require.NotEqual(t, fpFixed, fpKelly)
}

func TestFingerprintDiffersOnParams(t *testing.T) {
	sizing := backtest.FixedSizing(decimal.NewFromInt(10))
	fp14, err := Fingerprint(rsiConfig(14), "BTCUSDT", 365, decimal.NewFromInt(1000), sizing)
	require.NoError(t, err)
	fp21, err := Fingerprint(rsiConfig(21), "BTCUSDT", 365, decimal.NewFromInt(1000), sizing)
	require.NoError(t, err)
	require.NotEqual(t, fp14, fp21)
}
