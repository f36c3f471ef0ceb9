package signals

import "fmt"

// williamsRGenerator trades Williams %R extremes: Buy when %R falls at/
// below the oversold line (close to 0 on most scales, here kept in
// Williams' native -100..0 range so oversold is the more-negative bound),
// Sell at/above overbought.
type williamsRGenerator struct {
	period     int
	oversold   float64 // e.g. -80
	overbought float64 // e.g. -20

	highs *ringBuffer
	lows  *ringBuffer
}

func newWilliamsRGenerator(period int, oversold, overbought float64) *williamsRGenerator {
	return &williamsRGenerator{
		period:     period,
		oversold:   oversold,
		overbought: overbought,
		highs:      newRingBuffer(period),
		lows:       newRingBuffer(period),
	}
}

func (g *williamsRGenerator) Name() string {
	return fmt.Sprintf("WilliamsR(%d,%.0f,%.0f)", g.period, g.oversold, g.overbought)
}

func (g *williamsRGenerator) Warmup() int { return g.period }

func (g *williamsRGenerator) OnBar(c Bar) Signal {
	g.highs.push(c.High)
	g.lows.push(c.Low)
	if !g.highs.full() {
		return HoldSignal
	}

	periodHigh, _ := g.highs.highLow()
	_, periodLow := g.lows.highLow()
	if periodHigh == periodLow {
		return HoldSignal
	}

	r := -100 * (periodHigh - c.Close) / (periodHigh - periodLow)

	switch {
	case r <= g.oversold:
		return NewSignal(Buy, 0.5+minFloat((g.oversold-r)/100, 0.5))
	case r >= g.overbought:
		return NewSignal(Sell, 0.5+minFloat((r-g.overbought)/100, 0.5))
	default:
		return HoldSignal
	}
}

func (g *williamsRGenerator) Reset() {
	g.highs.reset()
	g.lows.reset()
}

func williamsRPresets() []SingleConfig {
	return []SingleConfig{
		{Kind: KindWilliamsR, Params: map[string]float64{"period": 14, "oversold": -80, "overbought": -20}},
		{Kind: KindWilliamsR, Params: map[string]float64{"period": 9, "oversold": -90, "overbought": -10}},
		{Kind: KindWilliamsR, Params: map[string]float64{"period": 21, "oversold": -70, "overbought": -30}},
	}
}
