package signals

import "fmt"

// bollingerGenerator trades mean-reversion off Bollinger Bands: Buy when
// price closes at/below the lower band, Sell at/above the upper band.
// Unlike the teacher's internal/indicators/bollinger.go (which is pinned
// to cinar/indicator's fixed 2-stddev band), k is fully parametric here,
// since spec's preset/random ranges require varying it.
type bollingerGenerator struct {
	period int
	k      float64

	window *ringBuffer
}

func newBollingerGenerator(period int, k float64) *bollingerGenerator {
	return &bollingerGenerator{period: period, k: k, window: newRingBuffer(period)}
}

func (g *bollingerGenerator) Name() string {
	return fmt.Sprintf("Bollinger(%d,%.2f)", g.period, g.k)
}

func (g *bollingerGenerator) Warmup() int { return g.period }

func (g *bollingerGenerator) OnBar(c Bar) Signal {
	g.window.push(c.Close)
	if !g.window.full() {
		return HoldSignal
	}

	mean := g.window.mean()
	stddev := g.window.stddev()
	upper := mean + g.k*stddev
	lower := mean - g.k*stddev

	switch {
	case c.Close <= lower && stddev > 0:
		confidence := (lower - c.Close) / (g.k * stddev)
		return NewSignal(Buy, 0.5+confidence)
	case c.Close >= upper && stddev > 0:
		confidence := (c.Close - upper) / (g.k * stddev)
		return NewSignal(Sell, 0.5+confidence)
	default:
		return HoldSignal
	}
}

func (g *bollingerGenerator) Reset() {
	g.window.reset()
}

func bollingerPresets() []SingleConfig {
	return []SingleConfig{
		{Kind: KindBollinger, Params: map[string]float64{"period": 20, "k": 2.0}},
		{Kind: KindBollinger, Params: map[string]float64{"period": 10, "k": 1.5}},
		{Kind: KindBollinger, Params: map[string]float64{"period": 30, "k": 2.5}},
	}
}
