package signals

import "fmt"

// atrMeanReversionGenerator trades price deviation from its SMA scaled by
// Wilder-smoothed Average True Range: Buy when price sits more than
// `multiplier` ATRs below its SMA, Sell when more than `multiplier` ATRs
// above. True Range smoothing follows internal/indicators/adx.go's
// smoothWilder recurrence.
type atrMeanReversionGenerator struct {
	period     int
	multiplier float64

	prevClose  float64
	hasPrev    bool
	atrSmooth  *wilderSmoother
	closeWindow *ringBuffer
}

func newATRMeanReversionGenerator(period int, multiplier float64) *atrMeanReversionGenerator {
	return &atrMeanReversionGenerator{
		period:      period,
		multiplier:  multiplier,
		atrSmooth:   newWilderSmoother(period),
		closeWindow: newRingBuffer(period),
	}
}

func (g *atrMeanReversionGenerator) Name() string {
	return fmt.Sprintf("ATRMeanReversion(%d,%.2f)", g.period, g.multiplier)
}

func (g *atrMeanReversionGenerator) Warmup() int { return g.period + 1 }

func (g *atrMeanReversionGenerator) OnBar(c Bar) Signal {
	g.closeWindow.push(c.Close)

	if !g.hasPrev {
		g.prevClose = c.Close
		g.hasPrev = true
		return HoldSignal
	}

	tr := trueRange(c.High, c.Low, g.prevClose)
	g.prevClose = c.Close

	atr, ok := g.atrSmooth.update(tr)
	if !ok || !g.closeWindow.full() {
		return HoldSignal
	}

	sma := g.closeWindow.mean()
	if atr == 0 {
		return HoldSignal
	}

	deviation := (c.Close - sma) / atr

	switch {
	case deviation <= -g.multiplier:
		return NewSignal(Buy, 0.5+minFloat((-deviation-g.multiplier)/g.multiplier, 0.5))
	case deviation >= g.multiplier:
		return NewSignal(Sell, 0.5+minFloat((deviation-g.multiplier)/g.multiplier, 0.5))
	default:
		return HoldSignal
	}
}

func trueRange(high, low, prevClose float64) float64 {
	hl := high - low
	hc := absFloat(high - prevClose)
	lc := absFloat(low - prevClose)
	tr := hl
	if hc > tr {
		tr = hc
	}
	if lc > tr {
		tr = lc
	}
	return tr
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (g *atrMeanReversionGenerator) Reset() {
	g.hasPrev = false
	g.prevClose = 0
	g.atrSmooth.reset()
	g.closeWindow.reset()
}

func atrMeanReversionPresets() []SingleConfig {
	return []SingleConfig{
		{Kind: KindATRRevert, Params: map[string]float64{"period": 14, "multiplier": 2.0}},
		{Kind: KindATRRevert, Params: map[string]float64{"period": 10, "multiplier": 1.5}},
		{Kind: KindATRRevert, Params: map[string]float64{"period": 20, "multiplier": 2.5}},
	}
}
