package signals

import "fmt"

// stochasticGenerator trades the Stochastic Oscillator's %K/%D: Buy when
// %K crosses above %D while near the oversold line, Sell when %K crosses
// below %D near the overbought line.
type stochasticGenerator struct {
	kPeriod    int
	dPeriod    int
	oversold   float64
	overbought float64

	highs   *ringBuffer
	lows    *ringBuffer
	kWindow *ringBuffer

	prevK, prevD float64
	hasPrev      bool
}

func newStochasticGenerator(kPeriod, dPeriod int, oversold, overbought float64) *stochasticGenerator {
	return &stochasticGenerator{
		kPeriod:    kPeriod,
		dPeriod:    dPeriod,
		oversold:   oversold,
		overbought: overbought,
		highs:      newRingBuffer(kPeriod),
		lows:       newRingBuffer(kPeriod),
		kWindow:    newRingBuffer(dPeriod),
	}
}

func (g *stochasticGenerator) Name() string {
	return fmt.Sprintf("Stochastic(%d,%d)", g.kPeriod, g.dPeriod)
}

func (g *stochasticGenerator) Warmup() int { return g.kPeriod + g.dPeriod }

func (g *stochasticGenerator) OnBar(c Bar) Signal {
	g.highs.push(c.High)
	g.lows.push(c.Low)
	if !g.highs.full() {
		return HoldSignal
	}

	periodHigh, _ := g.highs.highLow()
	_, periodLow := g.lows.highLow()

	var k float64
	if periodHigh == periodLow {
		k = 50
	} else {
		k = 100 * (c.Close - periodLow) / (periodHigh - periodLow)
	}

	g.kWindow.push(k)
	if !g.kWindow.full() {
		return HoldSignal
	}
	d := g.kWindow.mean()

	if !g.hasPrev {
		g.prevK, g.prevD = k, d
		g.hasPrev = true
		return HoldSignal
	}
	defer func() { g.prevK, g.prevD = k, d }()

	switch {
	case g.prevK <= g.prevD && k > d && k < g.oversold+20:
		return NewSignal(Buy, 0.5+(g.oversold-minFloat(k, g.oversold))/100+0.2)
	case g.prevK >= g.prevD && k < d && k > g.overbought-20:
		return NewSignal(Sell, 0.5+(minFloat(k, 100)-g.overbought)/100+0.2)
	default:
		return HoldSignal
	}
}

func (g *stochasticGenerator) Reset() {
	g.highs.reset()
	g.lows.reset()
	g.kWindow.reset()
	g.hasPrev = false
}

func stochasticPresets() []SingleConfig {
	return []SingleConfig{
		{Kind: KindStochastic, Params: map[string]float64{"k_period": 14, "d_period": 3, "oversold": 20, "overbought": 80}},
		{Kind: KindStochastic, Params: map[string]float64{"k_period": 9, "d_period": 3, "oversold": 15, "overbought": 85}},
		{Kind: KindStochastic, Params: map[string]float64{"k_period": 21, "d_period": 5, "oversold": 25, "overbought": 75}},
	}
}
