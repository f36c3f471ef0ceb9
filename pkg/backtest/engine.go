// Package backtest replays a single signals.Generator bar-by-bar against a
// candle series, producing deterministic fill accounting and performance
// metrics for spec.md's discovery agent to rank.
package backtest

import (
	"github.com/ajitpratap0/polydiscover/internal/candles"
	"github.com/ajitpratap0/polydiscover/internal/signals"
	"github.com/shopspring/decimal"
)

// positionState is the engine's Flat/Long state machine (spec §4.2). There
// is no Short state: a Sell while Flat is a no-op, symmetric to a Buy while
// already Long.
type positionState int

const (
	statePositionFlat positionState = iota
	statePositionLong
)

// openPosition tracks the single concurrent position the engine can hold.
type openPosition struct {
	entryBar   int
	entryPrice decimal.Decimal
	shares     decimal.Decimal
	entryFee   decimal.Decimal
}

// Trade is one closed round trip, the unit the metrics pipeline folds over.
type Trade struct {
	EntryBar   int
	ExitBar    int
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	Shares     decimal.Decimal
	EntryFee   decimal.Decimal
	ExitFee    decimal.Decimal
	NetPnL     decimal.Decimal
	ReturnPct  float64
}

// Config bundles everything a Run needs beyond the generator and candles:
// starting capital, the sizing mode that turns a Buy's confidence into a
// share count, and the fee model's parameters.
type Config struct {
	InitialCapital decimal.Decimal
	Sizing         SizingMode
	Fees           FeeConfig
}

// warmupAware is implemented by every concrete signals.Generator built via
// signals.Build; the engine uses it to enforce spec §4.2's
// `candles.length < warmup+2` failure semantics without signals needing to
// expose Warmup() on its public Generator interface.
type warmupAware interface {
	Warmup() int
}

// Run replays generator bar-by-bar over candleSeries and returns the Result
// folded from the closed trades and the equity curve sampled at each one.
// It never returns an error for data-insufficient or generator-panic cases
// (spec §7): those surface as a valid, zero-trade Result instead.
func Run(generator signals.Generator, candleSeries []candles.Candle, cfg Config) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = zeroTradeResult(cfg)
			err = nil
		}
	}()

	warmup := 0
	if wa, ok := generator.(warmupAware); ok {
		warmup = wa.Warmup()
	}
	if len(candleSeries) < warmup+2 {
		return zeroTradeResult(cfg), nil
	}

	generator.Reset()

	trades, equityCurve := simulate(generator, candleSeries, cfg)
	res := buildResult(trades, equityCurve, cfg, candleSeries)

	if res.NetPnL.IsPositive() && res.WinRatePct > 50 {
		generator.Reset()
		if conf, ok := quartileConfidence(generator, candleSeries, cfg); ok {
			res.StrategyConfidencePct = &conf
		}
	}
	res.CompositeScore = compositeScore(res)

	return res, nil
}

// simulate runs the Flat/Long state machine across every bar, returning the
// closed trades and an equity curve sampled at each bar a trade closes.
func simulate(generator signals.Generator, candleSeries []candles.Candle, cfg Config) ([]Trade, []decimal.Decimal) {
	state := statePositionFlat
	var position openPosition
	var trades []Trade
	var equityCurve []decimal.Decimal

	cash := cfg.InitialCapital
	baselineClose := candleSeries[0].CloseFloat()

	for i, c := range candleSeries {
		bar := signals.Bar{
			Close:  c.CloseFloat(),
			High:   floatOf(c.High),
			Low:    floatOf(c.Low),
			Volume: floatOf(c.Volume),
		}
		sig := generator.OnBar(bar)
		closePrice := c.Close
		p := EstimatePolyProbability(baselineClose, bar.Close)

		switch state {
		case statePositionFlat:
			if sig.Side != signals.Buy {
				continue
			}
			equity := cash // always Flat here: no open position to mark
			risk := cfg.Sizing.RiskAmount(equity, sig.Confidence)
			shares := sharesFromRisk(risk, closePrice)
			if shares.LessThan(decimal.NewFromInt(1)) {
				continue
			}
			fee := decimal.NewFromFloat(Fee(floatOf(shares), p, cfg.Fees))
			notional := shares.Mul(closePrice)
			cash = cash.Sub(notional).Sub(fee)
			position = openPosition{entryBar: i, entryPrice: closePrice, shares: shares, entryFee: fee}
			state = statePositionLong

		case statePositionLong:
			if sig.Side != signals.Sell {
				continue
			}
			trade, proceeds := closePosition(position, i, closePrice, p, cfg.Fees)
			cash = cash.Add(proceeds)
			trades = append(trades, trade)
			equityCurve = append(equityCurve, cash)
			state = statePositionFlat
			position = openPosition{}
		}
	}

	if state == statePositionLong {
		last := candleSeries[len(candleSeries)-1]
		trade, proceeds := closePositionNoFee(position, len(candleSeries)-1, last.Close)
		cash = cash.Add(proceeds)
		trades = append(trades, trade)
		equityCurve = append(equityCurve, cash)
	}

	return trades, equityCurve
}

// closePosition realizes a Long->Flat transition with an exit fee charged.
func closePosition(pos openPosition, bar int, exitPrice decimal.Decimal, p float64, feeCfg FeeConfig) (Trade, decimal.Decimal) {
	fee := decimal.NewFromFloat(Fee(floatOf(pos.shares), p, feeCfg))
	notional := pos.shares.Mul(exitPrice)
	proceeds := notional.Sub(fee)

	entryNotional := pos.shares.Mul(pos.entryPrice)
	netPnL := proceeds.Sub(entryNotional).Sub(pos.entryFee)
	returnPct := 0.0
	if !entryNotional.IsZero() {
		returnPct = floatOf(netPnL) / floatOf(entryNotional) * 100
	}

	return Trade{
		EntryBar: pos.entryBar, ExitBar: bar,
		EntryPrice: pos.entryPrice, ExitPrice: exitPrice,
		Shares: pos.shares, EntryFee: pos.entryFee, ExitFee: fee,
		NetPnL: netPnL, ReturnPct: returnPct,
	}, proceeds
}

// closePositionNoFee force-closes an end-of-series open position at the
// final close with no additional fee (spec §4.2's end-of-series rule).
func closePositionNoFee(pos openPosition, bar int, exitPrice decimal.Decimal) (Trade, decimal.Decimal) {
	notional := pos.shares.Mul(exitPrice)
	proceeds := notional

	entryNotional := pos.shares.Mul(pos.entryPrice)
	netPnL := proceeds.Sub(entryNotional).Sub(pos.entryFee)
	returnPct := 0.0
	if !entryNotional.IsZero() {
		returnPct = floatOf(netPnL) / floatOf(entryNotional) * 100
	}

	return Trade{
		EntryBar: pos.entryBar, ExitBar: bar,
		EntryPrice: pos.entryPrice, ExitPrice: exitPrice,
		Shares: pos.shares, EntryFee: pos.entryFee, ExitFee: decimal.Zero,
		NetPnL: netPnL, ReturnPct: returnPct,
	}, proceeds
}

func sharesFromRisk(risk, price decimal.Decimal) decimal.Decimal {
	if price.IsZero() {
		return decimal.Zero
	}
	return risk.Div(price).Floor()
}

func floatOf(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func zeroTradeResult(cfg Config) *Result {
	return &Result{
		Valid:          true,
		InitialCapital: cfg.InitialCapital,
		FinalEquity:    cfg.InitialCapital,
		NetPnL:         decimal.Zero,
		GrossPnL:       decimal.Zero,
		TotalFees:      decimal.Zero,
		CompositeScore: 0,
	}
}
