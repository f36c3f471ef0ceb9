package signals

import "fmt"

// obvSMAGenerator trades On-Balance-Volume level against its own rolling
// SMA (spec §4.1's table is a plain level comparison, not a crossover):
// Buy while OBV sits above SMA(OBV), Sell while below.
type obvSMAGenerator struct {
	period int

	prevClose float64
	hasPrev   bool
	obv       float64
	obvWindow *ringBuffer
}

func newOBVSMAGenerator(period int) *obvSMAGenerator {
	return &obvSMAGenerator{period: period, obvWindow: newRingBuffer(period)}
}

func (g *obvSMAGenerator) Name() string {
	return fmt.Sprintf("OBVSMA(%d)", g.period)
}

func (g *obvSMAGenerator) Warmup() int { return g.period + 1 }

func (g *obvSMAGenerator) OnBar(c Bar) Signal {
	if !g.hasPrev {
		g.prevClose = c.Close
		g.hasPrev = true
		g.obvWindow.push(g.obv)
		return HoldSignal
	}

	switch {
	case c.Close > g.prevClose:
		g.obv += c.Volume
	case c.Close < g.prevClose:
		g.obv -= c.Volume
	}
	g.prevClose = c.Close
	g.obvWindow.push(g.obv)

	if !g.obvWindow.full() {
		return HoldSignal
	}

	sma := g.obvWindow.mean()
	diff := g.obv - sma
	magnitude := 0.0
	if sma != 0 {
		magnitude = absFloat(diff) / absFloat(sma)
	}

	switch {
	case diff > 0:
		return NewSignal(Buy, 0.5+minFloat(magnitude, 0.5))
	case diff < 0:
		return NewSignal(Sell, 0.5+minFloat(magnitude, 0.5))
	default:
		return HoldSignal
	}
}

func (g *obvSMAGenerator) Reset() {
	g.hasPrev = false
	g.prevClose = 0
	g.obv = 0
	g.obvWindow.reset()
}

func obvSMAPresets() []SingleConfig {
	return []SingleConfig{
		{Kind: KindOBV, Params: map[string]float64{"period": 20}},
		{Kind: KindOBV, Params: map[string]float64{"period": 10}},
		{Kind: KindOBV, Params: map[string]float64{"period": 40}},
	}
}
