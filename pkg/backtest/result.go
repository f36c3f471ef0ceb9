package backtest

import "github.com/shopspring/decimal"

// Result is spec.md §3's BacktestResult: the full fixed set of fields a
// single candidate's backtest produces, everything the composite score and
// the result store's sort/filter operations are computed from.
type Result struct {
	Valid bool

	InitialCapital decimal.Decimal
	FinalEquity    decimal.Decimal

	GrossPnL  decimal.Decimal
	TotalFees decimal.Decimal
	NetPnL    decimal.Decimal

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRatePct    float64

	MaxDrawdownAbs decimal.Decimal
	MaxDrawdownPct float64

	SharpeRatio  float64
	SortinoRatio float64
	ProfitFactor float64

	AvgWinPnL  decimal.Decimal
	AvgLossPnL decimal.Decimal

	MaxConsecutiveLosses int
	TotalVolume          decimal.Decimal

	AnnualizedReturnPct float64
	AnnualizedSharpe    float64

	// StrategyConfidencePct is nil unless NetPnL>0 and WinRatePct>50, per
	// spec §4.2's quartile-analysis gate.
	StrategyConfidencePct *float64

	CompositeScore float64
}
