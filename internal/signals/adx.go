package signals

import "fmt"

// adxGenerator trades trend strength and direction: when ADX is above
// `threshold` (a strong trend is underway), Buy if +DI > -DI, Sell if
// -DI > +DI; below threshold the market is ranging and the generator
// holds. Directly follows internal/indicators/adx.go's two-stage Wilder
// smoothing (TR/+DM/-DM, then DX), turned into an incremental form.
type adxGenerator struct {
	period    int
	threshold float64

	prevHigh, prevLow, prevClose float64
	hasPrev                      bool

	trSmooth   *wilderSmoother
	plusDMSm   *wilderSmoother
	minusDMSm  *wilderSmoother
	dxSmooth   *wilderSmoother
}

func newADXGenerator(period int, threshold float64) *adxGenerator {
	return &adxGenerator{
		period:    period,
		threshold: threshold,
		trSmooth:  newWilderSmoother(period),
		plusDMSm:  newWilderSmoother(period),
		minusDMSm: newWilderSmoother(period),
		dxSmooth:  newWilderSmoother(period),
	}
}

func (g *adxGenerator) Name() string {
	return fmt.Sprintf("ADX(%d,%.0f)", g.period, g.threshold)
}

func (g *adxGenerator) Warmup() int { return 2*g.period + 1 }

func (g *adxGenerator) OnBar(c Bar) Signal {
	if !g.hasPrev {
		g.prevHigh, g.prevLow, g.prevClose = c.High, c.Low, c.Close
		g.hasPrev = true
		return HoldSignal
	}

	upMove := c.High - g.prevHigh
	downMove := g.prevLow - c.Low

	var plusDM, minusDM float64
	if upMove > downMove && upMove > 0 {
		plusDM = upMove
	}
	if downMove > upMove && downMove > 0 {
		minusDM = downMove
	}

	tr := trueRange(c.High, c.Low, g.prevClose)
	g.prevHigh, g.prevLow, g.prevClose = c.High, c.Low, c.Close

	trAvg, trOK := g.trSmooth.update(tr)
	plusDMAvg, plusOK := g.plusDMSm.update(plusDM)
	minusDMAvg, minusOK := g.minusDMSm.update(minusDM)
	if !trOK || !plusOK || !minusOK || trAvg == 0 {
		return HoldSignal
	}

	plusDI := 100 * plusDMAvg / trAvg
	minusDI := 100 * minusDMAvg / trAvg

	diSum := plusDI + minusDI
	var dx float64
	if diSum > 0 {
		dx = 100 * absFloat(plusDI-minusDI) / diSum
	}

	adx, adxOK := g.dxSmooth.update(dx)
	if !adxOK {
		return HoldSignal
	}

	if adx < g.threshold {
		return HoldSignal
	}

	confidence := 0.5 + minFloat((adx-g.threshold)/100, 0.5)
	if plusDI > minusDI {
		return NewSignal(Buy, confidence)
	}
	return NewSignal(Sell, confidence)
}

func (g *adxGenerator) Reset() {
	g.hasPrev = false
	g.prevHigh, g.prevLow, g.prevClose = 0, 0, 0
	g.trSmooth.reset()
	g.plusDMSm.reset()
	g.minusDMSm.reset()
	g.dxSmooth.reset()
}

func adxPresets() []SingleConfig {
	return []SingleConfig{
		{Kind: KindADX, Params: map[string]float64{"period": 14, "threshold": 25}},
		{Kind: KindADX, Params: map[string]float64{"period": 10, "threshold": 20}},
		{Kind: KindADX, Params: map[string]float64{"period": 21, "threshold": 30}},
	}
}
