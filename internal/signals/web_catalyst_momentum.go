package signals

import "fmt"

// catalystMomentumGenerator implements spec §4.1's CatalystMomentum: a
// long-only breakout-with-trailing-stop strategy. Entry fires when close
// breaks spike_threshold above its SMA; once in (the generator's own
// notion of) a position, it tracks the high since entry and exits on a
// trailing-stop percentage drawdown from that high.
type catalystMomentumGenerator struct {
	period         int
	spikeThreshold float64
	trailingStop   float64

	smaWindow *sma

	inPosition     bool
	highSinceEntry float64
}

func newCatalystMomentumGenerator(period int, spikeThreshold, trailingStop float64) *catalystMomentumGenerator {
	return &catalystMomentumGenerator{period: period, spikeThreshold: spikeThreshold, trailingStop: trailingStop, smaWindow: newSMA(period)}
}

func (g *catalystMomentumGenerator) Name() string {
	return fmt.Sprintf("CatalystMomentum(%d,%.3f,%.3f)", g.period, g.spikeThreshold, g.trailingStop)
}

func (g *catalystMomentumGenerator) Warmup() int { return g.period }

func (g *catalystMomentumGenerator) OnBar(c Bar) Signal {
	smaVal, ok := g.smaWindow.update(c.Close)
	if !ok {
		return HoldSignal
	}

	if g.inPosition {
		if c.Close > g.highSinceEntry {
			g.highSinceEntry = c.Close
		}
		drawdown := (g.highSinceEntry - c.Close) / g.highSinceEntry
		if drawdown > g.trailingStop {
			g.inPosition = false
			return NewSignal(Sell, 0.5+minFloat(drawdown, 0.5))
		}
		return HoldSignal
	}

	if c.Close > smaVal*(1+g.spikeThreshold) {
		g.inPosition = true
		g.highSinceEntry = c.Close
		excess := (c.Close - smaVal*(1+g.spikeThreshold)) / smaVal
		return NewSignal(Buy, 0.5+minFloat(excess*10, 0.5))
	}
	return HoldSignal
}

func (g *catalystMomentumGenerator) Reset() {
	g.smaWindow.reset()
	g.inPosition = false
	g.highSinceEntry = 0
}

func catalystMomentumDefaultConfig() WebConfig {
	return WebConfig{ID: WebCatalystMomentum, Params: map[string]float64{
		"period": 20, "spike_threshold": 0.02, "trailing_stop_pct": 0.03,
	}}
}
