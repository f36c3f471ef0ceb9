package signals

import "fmt"

// rsiGenerator trades Relative Strength Index extremes: Buy when RSI falls
// to/below the oversold threshold, Sell when it rises to/above overbought.
// Wilder's smoothing of gains/losses, exactly as internal/indicators/adx.go
// smooths True Range/+DM/-DM, generalized to RSI's gain/loss series.
type rsiGenerator struct {
	period     int
	oversold   float64
	overbought float64

	prevClose   float64
	hasPrev     bool
	gainSmooth  *wilderSmoother
	lossSmooth  *wilderSmoother
	barsSeen    int
}

func newRSIGenerator(period int, oversold, overbought float64) *rsiGenerator {
	return &rsiGenerator{
		period:     period,
		oversold:   oversold,
		overbought: overbought,
		gainSmooth: newWilderSmoother(period),
		lossSmooth: newWilderSmoother(period),
	}
}

func (g *rsiGenerator) Name() string {
	return fmt.Sprintf("RSI(%d,%.0f,%.0f)", g.period, g.oversold, g.overbought)
}

func (g *rsiGenerator) Warmup() int { return g.period + 1 }

func (g *rsiGenerator) OnBar(c Bar) Signal {
	g.barsSeen++
	if !g.hasPrev {
		g.prevClose = c.Close
		g.hasPrev = true
		return HoldSignal
	}

	change := c.Close - g.prevClose
	g.prevClose = c.Close

	var gain, loss float64
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	gAvg, gOK := g.gainSmooth.update(gain)
	lAvg, lOK := g.lossSmooth.update(loss)
	if !gOK || !lOK {
		return HoldSignal
	}

	var rsi float64
	if lAvg == 0 {
		rsi = 100
	} else {
		rs := gAvg / lAvg
		rsi = 100 - (100 / (1 + rs))
	}

	switch {
	case rsi <= g.oversold:
		confidence := (g.oversold - rsi) / g.oversold
		return NewSignal(Buy, 0.5+confidence)
	case rsi >= g.overbought:
		confidence := (rsi - g.overbought) / (100 - g.overbought)
		return NewSignal(Sell, 0.5+confidence)
	default:
		return HoldSignal
	}
}

func (g *rsiGenerator) Reset() {
	g.hasPrev = false
	g.prevClose = 0
	g.barsSeen = 0
	g.gainSmooth.reset()
	g.lossSmooth.reset()
}

func rsiPresets() []SingleConfig {
	return []SingleConfig{
		{Kind: KindRSI, Params: map[string]float64{"period": 14, "oversold": 30, "overbought": 70}},
		{Kind: KindRSI, Params: map[string]float64{"period": 7, "oversold": 20, "overbought": 80}},
		{Kind: KindRSI, Params: map[string]float64{"period": 21, "oversold": 35, "overbought": 65}},
	}
}
