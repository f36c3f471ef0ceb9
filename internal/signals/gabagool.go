package signals

import (
	"fmt"
	"math"
)

// gabagoolGenerator is the binary-arbitrage path (spec §4.1): each bar is
// treated as one round of a synthetic paired-outcome market. An "up" and
// a "down" outcome price are derived from the candle's position within
// its own recent range, and a round is arbitrageable when
// `up_ask + down_ask + 2*fee < 1.0` — buying both legs locks in a profit
// at resolution regardless of which side wins.
//
// This generator emits a single high-confidence Buy for a detected round,
// representing "both legs bought", and never emits Sell. The backtest
// engine handles that Buy like any other entry in its Flat/Long state
// machine: the position stays open until the end of the series, where the
// engine force-closes it at the final close. Rounds are not resolved one
// by one and no per-round PnL is recorded.
type gabagoolGenerator struct {
	period        int
	feeRate       float64
	feeExponent   float64
	maxOrderSize  float64

	highs *ringBuffer
	lows  *ringBuffer
}

func newGabagoolGenerator(cfg GabagoolConfig) *gabagoolGenerator {
	period := 10
	feeRate := 0.25
	feeExponent := 2.0
	maxOrderSize := 1.0
	if v, ok := cfg.Params["period"]; ok {
		period = int(v)
	}
	if v, ok := cfg.Params["fee_rate"]; ok {
		feeRate = v
	}
	if v, ok := cfg.Params["fee_exponent"]; ok {
		feeExponent = v
	}
	if v, ok := cfg.Params["max_order_size"]; ok {
		maxOrderSize = v
	}
	return &gabagoolGenerator{
		period:       period,
		feeRate:      feeRate,
		feeExponent:  feeExponent,
		maxOrderSize: maxOrderSize,
		highs:        newRingBuffer(period),
		lows:         newRingBuffer(period),
	}
}

func (g *gabagoolGenerator) Name() string {
	return fmt.Sprintf("Gabagool(%d,%.2f)", g.period, g.maxOrderSize)
}

func (g *gabagoolGenerator) Warmup() int { return g.period }

// outcomePrices derives the synthetic up/down outcome ask prices from the
// candle's position within its own recent high/low range: a close nearer
// the period high implies a richer "up" ask and a cheaper "down" ask, and
// vice versa, with both legs priced so they would sum to ~1.0 in a fair
// market.
func (g *gabagoolGenerator) outcomePrices(c Bar, periodHigh, periodLow float64) (upAsk, downAsk float64) {
	if periodHigh == periodLow {
		return 0.5, 0.5
	}
	position := (c.Close - periodLow) / (periodHigh - periodLow)
	upAsk = clampRange(0.05+0.90*position, 0.02, 0.98)
	downAsk = clampRange(0.95-0.90*position, 0.02, 0.98)
	return upAsk, downAsk
}

func (g *gabagoolGenerator) perLegFee(shares, p float64) float64 {
	fee := shares * g.feeRate * math.Pow(p*(1-p), g.feeExponent)
	if fee < 0.0001 {
		return 0
	}
	return roundTo4(fee)
}

func (g *gabagoolGenerator) OnBar(c Bar) Signal {
	g.highs.push(c.High)
	g.lows.push(c.Low)
	if !g.highs.full() {
		return HoldSignal
	}
	periodHigh, _ := g.highs.highLow()
	_, periodLow := g.lows.highLow()

	upAsk, downAsk := g.outcomePrices(c, periodHigh, periodLow)
	feePerShare := g.perLegFee(g.maxOrderSize, upAsk) + g.perLegFee(g.maxOrderSize, downAsk)

	if upAsk+downAsk+2*feePerShare < 1.0 {
		edge := 1.0 - (upAsk + downAsk + 2*feePerShare)
		return NewSignal(Buy, 0.5+minFloat(edge*5, 0.5))
	}
	return HoldSignal
}

func (g *gabagoolGenerator) Reset() {
	g.highs.reset()
	g.lows.reset()
}

func roundTo4(v float64) float64 {
	scaled := v * 10000
	rounded := float64(int64(scaled + 0.5))
	return rounded / 10000
}

func gabagoolDefaultConfig() GabagoolConfig {
	return GabagoolConfig{Params: map[string]float64{
		"period": 10, "fee_rate": 0.25, "fee_exponent": 2.0, "max_order_size": 1.0,
	}}
}
