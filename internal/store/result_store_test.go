package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ajitpratap0/polydiscover/pkg/backtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResult(fingerprint, strategyName string, netPnL float64, winRate float64, trades int) StoredResult {
	return StoredResult{
		Fingerprint:  fingerprint,
		StrategyName: strategyName,
		StrategyTag:  "momentum",
		Symbol:       "BTCUSDT",
		Days:         30,
		SizingMode:   "fixed",
		CreatedAtMs:  1700000000000,
		Result: backtest.Result{
			Valid:          true,
			InitialCapital: decimal.NewFromInt(1000),
			FinalEquity:    decimal.NewFromInt(1000).Add(decimal.NewFromFloat(netPnL)),
			GrossPnL:       decimal.NewFromFloat(netPnL),
			TotalFees:      decimal.Zero,
			NetPnL:         decimal.NewFromFloat(netPnL),
			TotalTrades:    trades,
			WinningTrades:  trades,
			WinRatePct:     winRate,
			MaxDrawdownAbs: decimal.Zero,
			AvgWinPnL:      decimal.NewFromFloat(netPnL),
			AvgLossPnL:     decimal.Zero,
			TotalVolume:    decimal.NewFromInt(1000),
			CompositeScore: netPnL,
		},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))
}

func TestInsertDuplicateFingerprintIsSilentlyAbsorbed(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	inserted, err := db.Insert(ctx, sampleResult("fp-1", "ema_cross", 50, 60, 10))
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = db.Insert(ctx, sampleResult("fp-1", "ema_cross", 999, 99, 99))
	require.NoError(t, err)
	require.False(t, inserted)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalBacktests)
}

func TestPaginateFiltersAndSorts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Insert(ctx, sampleResult("fp-1", "ema_cross", 50, 60, 10))
	require.NoError(t, err)
	_, err = db.Insert(ctx, sampleResult("fp-2", "rsi", 100, 70, 10))
	require.NoError(t, err)

	results, err := db.Paginate(ctx, Filters{}, SortNetPnL, 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "rsi", results[0].StrategyName)

	minWinRate := 65.0
	filtered, err := db.Paginate(ctx, Filters{MinWinRate: &minWinRate}, SortNetPnL, 10, 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "rsi", filtered[0].StrategyName)
}

func TestTopUniqueReturnsBestPerStrategy(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Insert(ctx, sampleResult("fp-1", "ema_cross", 50, 60, 10))
	require.NoError(t, err)
	_, err = db.Insert(ctx, sampleResult("fp-2", "ema_cross", 200, 80, 10))
	require.NoError(t, err)
	_, err = db.Insert(ctx, sampleResult("fp-3", "rsi", 30, 55, 10))
	require.NoError(t, err)
	// Below the total_trades>=5 floor; must never surface in top_unique.
	_, err = db.Insert(ctx, sampleResult("fp-4", "macd", 1000, 99, 2))
	require.NoError(t, err)

	top, err := db.TopUnique(ctx, 10, SortNetPnL)
	require.NoError(t, err)
	require.Len(t, top, 2)

	byName := map[string]StoredResult{}
	for _, r := range top {
		byName[r.StrategyName] = r
	}
	require.Equal(t, "fp-2", byName["ema_cross"].Fingerprint)
	require.Equal(t, "fp-3", byName["rsi"].Fingerprint)
	_, hasMacd := byName["macd"]
	require.False(t, hasMacd)
}

func TestGetStatsAggregates(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Insert(ctx, sampleResult("fp-1", "ema_cross", 50, 60, 10))
	require.NoError(t, err)
	_, err = db.Insert(ctx, sampleResult("fp-2", "rsi", 200, 90, 10))
	require.NoError(t, err)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalBacktests)
	require.Equal(t, 2, stats.UniqueStrategies)
	require.Equal(t, "rsi", stats.BestStrategyName)
	require.InDelta(t, 90.0, stats.BestWinRatePct, 0.001)
	require.True(t, stats.BestNetPnL.Equal(decimal.NewFromInt(200)))
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate(context.Background()))

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)
}
