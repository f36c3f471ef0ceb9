package backtest

import (
	"testing"

	"github.com/ajitpratap0/polydiscover/internal/candles"
	"github.com/ajitpratap0/polydiscover/internal/signals"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const barIntervalMs = 15 * 60 * 1000

func makeCandle(i int, open, high, low, close, volume float64) candles.Candle {
	return candles.Candle{
		OpenTimeMs:  int64(i) * barIntervalMs,
		Open:        decimal.NewFromFloat(open),
		High:        decimal.NewFromFloat(high),
		Low:         decimal.NewFromFloat(low),
		Close:       decimal.NewFromFloat(close),
		Volume:      decimal.NewFromFloat(volume),
		CloseTimeMs: int64(i+1) * barIntervalMs,
	}
}

func flatCandles(n int, price float64) []candles.Candle {
	out := make([]candles.Candle, n)
	for i := 0; i < n; i++ {
		out[i] = makeCandle(i, price, price, price, price, 100)
	}
	return out
}

func uptrendCandles(n int) []candles.Candle {
	out := make([]candles.Candle, n)
	for i := 0; i < n; i++ {
		price := 100 + float64(i)*0.1
		out[i] = makeCandle(i, price, price+0.05, price-0.05, price, 100)
	}
	return out
}

func defaultEngineConfig() Config {
	return Config{
		InitialCapital: decimal.NewFromInt(1000),
		Sizing:         FixedSizing(decimal.NewFromInt(100)),
		Fees:           DefaultFeeConfig(),
	}
}

func TestRun_FlatSeries_NoTrades(t *testing.T) {
	cfg := presetSingleConfig(t, signals.KindRSI, 0)
	gen, err := signals.Build(cfg)
	require.NoError(t, err)

	series := flatCandles(2000, 100)
	res, err := Run(gen, series, defaultEngineConfig())
	require.NoError(t, err)

	assert.True(t, res.Valid)
	assert.Equal(t, 0, res.TotalTrades)
	assert.True(t, res.NetPnL.IsZero())
	assert.Equal(t, 0.0, res.CompositeScore)
}

func TestRun_Uptrend_DeterministicAcrossReset(t *testing.T) {
	cfg := presetSingleConfig(t, signals.KindEMACross, 0)
	gen, err := signals.Build(cfg)
	require.NoError(t, err)

	series := uptrendCandles(200)

	res1, err := Run(gen, series, defaultEngineConfig())
	require.NoError(t, err)

	res2, err := Run(gen, series, defaultEngineConfig())
	require.NoError(t, err)

	assert.Equal(t, res1.TotalTrades, res2.TotalTrades)
	assert.True(t, res1.NetPnL.Equal(res2.NetPnL))
}

func TestRun_Uptrend_EMACrossProfitable(t *testing.T) {
	cfg := presetSingleConfig(t, signals.KindEMACross, 0)
	gen, err := signals.Build(cfg)
	require.NoError(t, err)

	series := uptrendCandles(500)
	res, err := Run(gen, series, defaultEngineConfig())
	require.NoError(t, err)

	assert.Greater(t, res.TotalTrades, 0)
	assert.True(t, res.NetPnL.IsPositive())
}

func TestRun_TooFewCandles_ReturnsZeroTradeResult(t *testing.T) {
	cfg := presetSingleConfig(t, signals.KindRSI, 0)
	gen, err := signals.Build(cfg)
	require.NoError(t, err)

	res, err := Run(gen, flatCandles(3, 100), defaultEngineConfig())
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 0, res.TotalTrades)
}

func TestRun_EndOfSeriesForcesClose(t *testing.T) {
	cfg := presetSingleConfig(t, signals.KindEMACross, 0)
	gen, err := signals.Build(cfg)
	require.NoError(t, err)

	series := uptrendCandles(60)
	res, err := Run(gen, series, defaultEngineConfig())
	require.NoError(t, err)

	// Any opened position must have been closed: winning+losing == total.
	assert.Equal(t, res.TotalTrades, res.WinningTrades+res.LosingTrades)
}

func presetSingleConfig(t *testing.T, kind signals.StrategyKind, idx int) signals.StrategyConfig {
	t.Helper()
	presets := signals.Presets(kind)
	require.NotEmpty(t, presets)
	single := presets[idx]
	return signals.StrategyConfig{Type: signals.TypeSingle, Single: &single}
}
