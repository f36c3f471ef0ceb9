package signals

import "fmt"

// vwapDeviationGenerator trades price deviation from a rolling VWAP: Buy
// when price is more than `thresholdPct` below VWAP, Sell when more than
// `thresholdPct` above. VWAP is computed over a rolling window of
// typical-price*volume rather than a cumulative session total, since this
// engine has no session boundary concept on a continuous 15m series.
type vwapDeviationGenerator struct {
	period       int
	thresholdPct float64

	pvWindow     *ringBuffer
	volumeWindow *ringBuffer
}

func newVWAPDeviationGenerator(period int, thresholdPct float64) *vwapDeviationGenerator {
	return &vwapDeviationGenerator{
		period:       period,
		thresholdPct: thresholdPct,
		pvWindow:     newRingBuffer(period),
		volumeWindow: newRingBuffer(period),
	}
}

func (g *vwapDeviationGenerator) Name() string {
	return fmt.Sprintf("VWAPDeviation(%d,%.3f)", g.period, g.thresholdPct)
}

func (g *vwapDeviationGenerator) Warmup() int { return g.period }

func (g *vwapDeviationGenerator) OnBar(c Bar) Signal {
	typicalPrice := (c.High + c.Low + c.Close) / 3
	g.pvWindow.push(typicalPrice * c.Volume)
	g.volumeWindow.push(c.Volume)

	if !g.pvWindow.full() {
		return HoldSignal
	}

	totalVolume := g.volumeWindow.mean() * float64(g.period)
	if totalVolume == 0 {
		return HoldSignal
	}
	vwap := (g.pvWindow.mean() * float64(g.period)) / totalVolume

	deviation := (c.Close - vwap) / vwap

	switch {
	case deviation <= -g.thresholdPct:
		return NewSignal(Buy, 0.5+minFloat(absFloat(deviation)/g.thresholdPct-1, 0.5))
	case deviation >= g.thresholdPct:
		return NewSignal(Sell, 0.5+minFloat(deviation/g.thresholdPct-1, 0.5))
	default:
		return HoldSignal
	}
}

func (g *vwapDeviationGenerator) Reset() {
	g.pvWindow.reset()
	g.volumeWindow.reset()
}

func vwapDeviationPresets() []SingleConfig {
	return []SingleConfig{
		{Kind: KindVWAP, Params: map[string]float64{"period": 20, "threshold_pct": 0.02}},
		{Kind: KindVWAP, Params: map[string]float64{"period": 10, "threshold_pct": 0.015}},
		{Kind: KindVWAP, Params: map[string]float64{"period": 40, "threshold_pct": 0.03}},
	}
}
