package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ajitpratap0/polydiscover/pkg/backtest"
	"github.com/shopspring/decimal"
)

// SortField is one of spec §6's nine allowed `sort_by` values for
// paginate/top_unique. Only these names are ever interpolated into an
// ORDER BY clause — callers cannot pass an arbitrary column.
type SortField string

const (
	SortCompositeScore      SortField = "composite_score"
	SortNetPnL              SortField = "net_pnl"
	SortWinRate             SortField = "win_rate_pct"
	SortSharpeRatio         SortField = "sharpe_ratio"
	SortSortinoRatio        SortField = "sortino_ratio"
	SortAnnualizedReturnPct SortField = "annualized_return_pct"
	SortStrategyConfidence  SortField = "strategy_confidence_pct"
	SortTotalTrades         SortField = "total_trades"
	SortCreatedAt           SortField = "created_at"
)

var validSortFields = map[SortField]bool{
	SortCompositeScore: true, SortNetPnL: true, SortWinRate: true,
	SortSharpeRatio: true, SortSortinoRatio: true, SortAnnualizedReturnPct: true,
	SortStrategyConfidence: true, SortTotalTrades: true, SortCreatedAt: true,
}

func (s SortField) column() (string, error) {
	if !validSortFields[s] {
		return "", fmt.Errorf("unknown sort field %q", s)
	}
	// net_pnl/max_drawdown_pct etc. sort on their own column; the
	// decimal-as-TEXT columns (net_pnl) need a numeric cast so ORDER BY
	// compares magnitudes, not lexicographic string order.
	if s == SortNetPnL {
		return "CAST(net_pnl AS REAL)", nil
	}
	return string(s), nil
}

// StoredResult is one row of backtest_results: the fingerprint + strategy
// identity the store adds on top of a bare backtest.Result.
type StoredResult struct {
	Fingerprint string
	StrategyName string
	StrategyTag  string
	Symbol       string
	Days         int
	SizingMode   string
	Result       backtest.Result
	CreatedAtMs  int64
}

// Filters narrows paginate() per spec §6's {strategy_tag?, symbol?, min_win_rate?}.
type Filters struct {
	StrategyTag *string
	Symbol      *string
	MinWinRate  *float64
}

// Stats is the store-wide summary spec §4.4's stats() operation returns.
type Stats struct {
	TotalBacktests    int
	UniqueStrategies  int
	BestWinRatePct    float64
	BestStrategyName  string
	BestNetPnL        decimal.Decimal
}

// Insert stores result idempotently: inserting the same fingerprint twice
// is a no-op on the second call (spec §8's "insert same fingerprint twice
// = insert once" law), reported back via the inserted return value so
// callers can bump their own skipped-candidate counters.
func (d *DB) Insert(ctx context.Context, r StoredResult) (inserted bool, err error) {
	err = d.withWriteLock(func() error {
		res := r.Result
		tag := confidenceOrNil(res.StrategyConfidencePct)

		result, execErr := d.conn.ExecContext(ctx, `
			INSERT OR IGNORE INTO backtest_results (
				params_fingerprint, strategy_name, strategy_tag, symbol, days,
				sizing_mode, initial_capital, final_equity, gross_pnl, total_fees,
				net_pnl, total_trades, winning_trades, losing_trades, win_rate_pct,
				max_drawdown_abs, max_drawdown_pct, sharpe_ratio, sortino_ratio,
				profit_factor, avg_win_pnl, avg_loss_pnl, max_consecutive_losses,
				total_volume, annualized_return_pct, annualized_sharpe,
				strategy_confidence_pct, composite_score, created_at
			) VALUES (?,?,?,?,?, ?,?,?,?,?, ?,?,?,?,?, ?,?,?,?, ?,?,?,?, ?,?,?, ?,?,?)`,
			r.Fingerprint, r.StrategyName, r.StrategyTag, r.Symbol, r.Days,
			r.SizingMode, res.InitialCapital.String(), res.FinalEquity.String(), res.GrossPnL.String(), res.TotalFees.String(),
			res.NetPnL.String(), res.TotalTrades, res.WinningTrades, res.LosingTrades, res.WinRatePct,
			res.MaxDrawdownAbs.String(), res.MaxDrawdownPct, res.SharpeRatio, res.SortinoRatio,
			res.ProfitFactor, res.AvgWinPnL.String(), res.AvgLossPnL.String(), res.MaxConsecutiveLosses,
			res.TotalVolume.String(), res.AnnualizedReturnPct, res.AnnualizedSharpe,
			tag, res.CompositeScore, r.CreatedAtMs,
		)
		if execErr != nil {
			return fmt.Errorf("insert backtest result: %w", execErr)
		}
		n, execErr := result.RowsAffected()
		if execErr != nil {
			return fmt.Errorf("read rows affected: %w", execErr)
		}
		inserted = n > 0
		return nil
	})
	return inserted, err
}

// Exists reports whether fingerprint already has a stored result, letting
// the discovery agent's per-backtest loop skip a candidate before paying
// for a candle fetch or a backtest run (spec §4.3's per-backtest loop).
func (d *DB) Exists(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := d.conn.QueryRowContext(ctx,
		`SELECT 1 FROM backtest_results WHERE params_fingerprint = ? LIMIT 1`, fingerprint,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check fingerprint existence: %w", err)
	}
	return true, nil
}

// Paginate returns results matching filters, ordered by sortBy descending.
func (d *DB) Paginate(ctx context.Context, filters Filters, sortBy SortField, limit, offset int) ([]StoredResult, error) {
	column, err := sortBy.column()
	if err != nil {
		return nil, err
	}

	where, args := filters.whereClause()
	query := fmt.Sprintf(`SELECT %s FROM backtest_results %s ORDER BY %s DESC LIMIT ? OFFSET ?`,
		resultColumns, where, column)
	args = append(args, limit, offset)

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("paginate backtest results: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

// TopUnique returns the single best row per strategy_name (by sortBy),
// restricted to strategies with at least 5 trades, per spec §4.4.
func (d *DB) TopUnique(ctx context.Context, limit int, sortBy SortField) ([]StoredResult, error) {
	column, err := sortBy.column()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM (
			SELECT %s, ROW_NUMBER() OVER (
				PARTITION BY strategy_name ORDER BY %s DESC
			) AS rn
			FROM backtest_results
			WHERE total_trades >= 5
		) WHERE rn = 1
		ORDER BY %s DESC
		LIMIT ?`, resultColumns, resultColumns, column, column)

	rows, err := d.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top-unique backtest results: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

// GetStats computes the store-wide summary spec §4.4's stats() exposes.
func (d *DB) GetStats(ctx context.Context) (Stats, error) {
	var s Stats
	var bestNetPnL sql.NullString
	var bestStrategy sql.NullString

	err := d.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT strategy_name),
			COALESCE(MAX(win_rate_pct), 0),
			(SELECT strategy_name FROM backtest_results ORDER BY win_rate_pct DESC LIMIT 1),
			(SELECT net_pnl FROM backtest_results ORDER BY CAST(net_pnl AS REAL) DESC LIMIT 1)
		FROM backtest_results
	`).Scan(&s.TotalBacktests, &s.UniqueStrategies, &s.BestWinRatePct, &bestStrategy, &bestNetPnL)
	if err != nil {
		return Stats{}, fmt.Errorf("compute store stats: %w", err)
	}

	if bestStrategy.Valid {
		s.BestStrategyName = bestStrategy.String
	}
	if bestNetPnL.Valid {
		if d, err := decimal.NewFromString(bestNetPnL.String); err == nil {
			s.BestNetPnL = d
		}
	}
	return s, nil
}

func (f Filters) whereClause() (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if f.StrategyTag != nil {
		clauses = append(clauses, "strategy_tag = ?")
		args = append(args, *f.StrategyTag)
	}
	if f.Symbol != nil {
		clauses = append(clauses, "symbol = ?")
		args = append(args, *f.Symbol)
	}
	if f.MinWinRate != nil {
		clauses = append(clauses, "win_rate_pct >= ?")
		args = append(args, *f.MinWinRate)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

const resultColumns = `
	params_fingerprint, strategy_name, strategy_tag, symbol, days,
	sizing_mode, initial_capital, final_equity, gross_pnl, total_fees,
	net_pnl, total_trades, winning_trades, losing_trades, win_rate_pct,
	max_drawdown_abs, max_drawdown_pct, sharpe_ratio, sortino_ratio,
	profit_factor, avg_win_pnl, avg_loss_pnl, max_consecutive_losses,
	total_volume, annualized_return_pct, annualized_sharpe,
	strategy_confidence_pct, composite_score, created_at`

func scanResults(rows *sql.Rows) ([]StoredResult, error) {
	var out []StoredResult
	for rows.Next() {
		var r StoredResult
		var initialCapital, finalEquity, grossPnL, totalFees, netPnL string
		var maxDrawdownAbs, avgWinPnL, avgLossPnL, totalVolume string
		var strategyConfidence sql.NullFloat64

		if err := rows.Scan(
			&r.Fingerprint, &r.StrategyName, &r.StrategyTag, &r.Symbol, &r.Days,
			&r.SizingMode, &initialCapital, &finalEquity, &grossPnL, &totalFees,
			&netPnL, &r.Result.TotalTrades, &r.Result.WinningTrades, &r.Result.LosingTrades, &r.Result.WinRatePct,
			&maxDrawdownAbs, &r.Result.MaxDrawdownPct, &r.Result.SharpeRatio, &r.Result.SortinoRatio,
			&r.Result.ProfitFactor, &avgWinPnL, &avgLossPnL, &r.Result.MaxConsecutiveLosses,
			&totalVolume, &r.Result.AnnualizedReturnPct, &r.Result.AnnualizedSharpe,
			&strategyConfidence, &r.Result.CompositeScore, &r.CreatedAtMs,
		); err != nil {
			return nil, fmt.Errorf("scan backtest result row: %w", err)
		}

		r.Result.Valid = true
		r.Result.InitialCapital = mustDecimal(initialCapital)
		r.Result.FinalEquity = mustDecimal(finalEquity)
		r.Result.GrossPnL = mustDecimal(grossPnL)
		r.Result.TotalFees = mustDecimal(totalFees)
		r.Result.NetPnL = mustDecimal(netPnL)
		r.Result.MaxDrawdownAbs = mustDecimal(maxDrawdownAbs)
		r.Result.AvgWinPnL = mustDecimal(avgWinPnL)
		r.Result.AvgLossPnL = mustDecimal(avgLossPnL)
		r.Result.TotalVolume = mustDecimal(totalVolume)
		if strategyConfidence.Valid {
			v := strategyConfidence.Float64
			r.Result.StrategyConfidencePct = &v
		}

		out = append(out, r)
	}
	return out, rows.Err()
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func confidenceOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
