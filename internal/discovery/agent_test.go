package discovery

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ajitpratap0/polydiscover/internal/candles"
	"github.com/ajitpratap0/polydiscover/internal/store"
	"github.com/ajitpratap0/polydiscover/pkg/backtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct{}

func (fakeFetcher) Fetch(ctx context.Context, symbol, interval string, fromMs, toMs int64) ([]candles.Candle, error) {
	const barIntervalMs = 15 * 60 * 1000
	out := make([]candles.Candle, 300)
	for i := range out {
		price := decimal.NewFromFloat(100 + float64(i)*0.05)
		out[i] = candles.Candle{
			OpenTimeMs:  int64(i) * barIntervalMs,
			Open:        price,
			High:        price.Add(decimal.NewFromFloat(0.5)),
			Low:         price.Sub(decimal.NewFromFloat(0.5)),
			Close:       price,
			Volume:      decimal.NewFromInt(1000),
			CloseTimeMs: int64(i+1) * barIntervalMs,
		}
	}
	return out, nil
}

func newTestAgent(t *testing.T) *Agent {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "discovery.db")
	db, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })

	fetcher := candles.NewCachedFetcher(fakeFetcher{}, nil, time.Hour)

	return NewAgent(AgentConfig{
		Fetcher: fetcher,
		Store:   db,
		Fees:    backtest.DefaultFeeConfig(),
		RNGSeed: 1,
	})
}

func TestStartIsIdempotentWhileRunning(t *testing.T) {
	agent := newTestAgent(t)
	req := StartRequest{
		Symbols:        []string{"BTCUSDT"},
		Days:           30,
		Sizing:         backtest.FixedSizing(decimal.NewFromInt(10)),
		InitialCapital: decimal.NewFromInt(1000),
	}

	handle1 := agent.Start(req)
	handle2 := agent.Start(req)
	require.Equal(t, handle1, handle2)

	agent.Cancel()
	require.Equal(t, "idle", agent.Status().Status)
}

func TestCancelStopsTheLoopAndPreservesResults(t *testing.T) {
	agent := newTestAgent(t)
	req := StartRequest{
		Symbols:        []string{"BTCUSDT"},
		Days:           30,
		Sizing:         backtest.FixedSizing(decimal.NewFromInt(10)),
		InitialCapital: decimal.NewFromInt(1000),
	}

	agent.Start(req)
	agent.Cancel()

	status := agent.Status()
	require.Equal(t, "idle", status.Status)

	stats, err := agent.cfg.Store.GetStats(context.Background())
	require.NoError(t, err)
	require.GreaterOrEqual(t, stats.TotalBacktests, 0)
}

func TestStatusSnapshotIncludesTopN(t *testing.T) {
	agent := newTestAgent(t)
	agent.top.insert(TopEntry{Fingerprint: "fp", StrategyName: "RSI", Score: 42})

	status := agent.Status()
	require.Len(t, status.Best, 1)
	require.Equal(t, float64(42), status.Best[0].Score)
}
