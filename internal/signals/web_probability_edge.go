package signals

import "fmt"

// probabilityEdgeGenerator implements spec §4.1's ProbabilityEdge exactly:
// a composite of an RSI-derived signal, a momentum signal, and a
// volatility signal is blended into the series' baseline-relative implied
// probability, and a trade fires when the re-estimate diverges from the
// plain market-implied probability by more than edge_threshold.
//
// vol_signal's `0.01` baseline is a hardcoded heuristic constant in the
// original design, not a measured quantity — preserved verbatim per the
// Open Question resolution in DESIGN.md rather than replaced with a
// computed baseline.
type probabilityEdgeGenerator struct {
	rsiPeriod     int
	smaPeriod     int
	volPeriod     int
	edgeThreshold float64

	baselineClose float64
	hasBaseline   bool

	prevClose  float64
	hasPrev    bool
	gainSmooth *wilderSmoother
	lossSmooth *wilderSmoother

	smaWindow    *sma
	returnWindow *ringBuffer
}

const volSignalBaseline = 0.01

func newProbabilityEdgeGenerator(rsiPeriod, smaPeriod, volPeriod int, edgeThreshold float64) *probabilityEdgeGenerator {
	return &probabilityEdgeGenerator{
		rsiPeriod:     rsiPeriod,
		smaPeriod:     smaPeriod,
		volPeriod:     volPeriod,
		edgeThreshold: edgeThreshold,
		gainSmooth:    newWilderSmoother(rsiPeriod),
		lossSmooth:    newWilderSmoother(rsiPeriod),
		smaWindow:     newSMA(smaPeriod),
		returnWindow:  newRingBuffer(volPeriod),
	}
}

func (g *probabilityEdgeGenerator) Name() string {
	return fmt.Sprintf("ProbabilityEdge(%d,%d,%d,%.3f)", g.rsiPeriod, g.smaPeriod, g.volPeriod, g.edgeThreshold)
}

func (g *probabilityEdgeGenerator) Warmup() int {
	return maxInt(g.rsiPeriod+1, maxInt(g.smaPeriod, g.volPeriod+1)) + 2
}

func (g *probabilityEdgeGenerator) OnBar(c Bar) Signal {
	if !g.hasBaseline {
		g.baselineClose = c.Close
		g.hasBaseline = true
	}

	smaVal, smaOK := g.smaWindow.update(c.Close)

	if !g.hasPrev {
		g.prevClose = c.Close
		g.hasPrev = true
		return HoldSignal
	}

	change := c.Close - g.prevClose
	var gain, loss float64
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}
	gAvg, gOK := g.gainSmooth.update(gain)
	lAvg, lOK := g.lossSmooth.update(loss)

	ret := 0.0
	if g.prevClose != 0 {
		ret = change / g.prevClose
	}
	g.returnWindow.push(ret)
	g.prevClose = c.Close

	if !gOK || !lOK || !smaOK || !g.returnWindow.full() {
		return HoldSignal
	}

	var rsi float64
	if lAvg == 0 {
		rsi = 100
	} else {
		rsi = 100 - 100/(1+gAvg/lAvg)
	}

	rsiSignal := (50 - rsi) / 50
	momentumSignal := 0.0
	if smaVal != 0 {
		momentumSignal = (c.Close - smaVal) / smaVal
	}
	volSignal := clampRange(volSignalBaseline-g.returnWindow.stddev(), -0.5, 0.5)

	composite := 0.4*rsiSignal + 0.3*momentumSignal + 0.3*volSignal
	marketProb := estimatePolyProbability(g.baselineClose, c.Close)
	estimatedProb := clampRange(marketProb+0.3*composite, 0.05, 0.95)

	edge := estimatedProb - marketProb
	switch {
	case edge > g.edgeThreshold:
		return NewSignal(Buy, 0.5+minFloat(edge, 0.5))
	case edge < -g.edgeThreshold:
		return NewSignal(Sell, 0.5+minFloat(-edge, 0.5))
	default:
		return HoldSignal
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (g *probabilityEdgeGenerator) Reset() {
	g.hasBaseline = false
	g.baselineClose = 0
	g.hasPrev = false
	g.prevClose = 0
	g.gainSmooth.reset()
	g.lossSmooth.reset()
	g.smaWindow.reset()
	g.returnWindow.reset()
}

func probabilityEdgeDefaultConfig() WebConfig {
	return WebConfig{ID: WebProbabilityEdge, Params: map[string]float64{
		"rsi_period": 14, "sma_period": 20, "vol_period": 10, "edge_threshold": 0.05,
	}}
}
