package signals

import "fmt"

// emaCrossGenerator trades a fast/slow EMA crossover: Buy when the fast
// EMA crosses above the slow EMA, Sell on the opposite cross.
type emaCrossGenerator struct {
	fastPeriod int
	slowPeriod int

	fast, slow *ema

	prevDiff    float64
	hasPrevDiff bool
	barsSeen    int
}

func newEMACrossGenerator(fastPeriod, slowPeriod int) *emaCrossGenerator {
	return &emaCrossGenerator{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
		fast:       newEMA(fastPeriod),
		slow:       newEMA(slowPeriod),
	}
}

func (g *emaCrossGenerator) Name() string {
	return fmt.Sprintf("EMACross(%d,%d)", g.fastPeriod, g.slowPeriod)
}

func (g *emaCrossGenerator) Warmup() int { return g.slowPeriod }

func (g *emaCrossGenerator) OnBar(c Bar) Signal {
	g.barsSeen++
	fastVal := g.fast.update(c.Close)
	slowVal := g.slow.update(c.Close)
	diff := fastVal - slowVal

	if g.barsSeen < g.Warmup() || !g.hasPrevDiff {
		g.prevDiff = diff
		g.hasPrevDiff = true
		return HoldSignal
	}

	defer func() { g.prevDiff = diff }()

	switch {
	case g.prevDiff <= 0 && diff > 0:
		return NewSignal(Buy, 0.5+minFloat(diff/(slowVal+1e-9)*10, 0.5))
	case g.prevDiff >= 0 && diff < 0:
		return NewSignal(Sell, 0.5+minFloat(-diff/(slowVal+1e-9)*10, 0.5))
	default:
		return HoldSignal
	}
}

func (g *emaCrossGenerator) Reset() {
	g.fast.reset()
	g.slow.reset()
	g.prevDiff = 0
	g.hasPrevDiff = false
	g.barsSeen = 0
}

func emaCrossPresets() []SingleConfig {
	return []SingleConfig{
		{Kind: KindEMACross, Params: map[string]float64{"fast": 9, "slow": 21}},
		{Kind: KindEMACross, Params: map[string]float64{"fast": 5, "slow": 10}},
		{Kind: KindEMACross, Params: map[string]float64{"fast": 20, "slow": 50}},
	}
}
