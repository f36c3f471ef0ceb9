package signals

import "fmt"

// macdGenerator trades MACD histogram sign-crossovers: Buy when the
// histogram (MACD line minus signal line) turns positive, Sell when it
// turns negative. EMA recurrence replaces the teacher's batch
// trend.NewMacdWithPeriod channel usage with an O(1)-per-bar update.
type macdGenerator struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int

	fast, slow *ema
	signal     *ema

	prevHist    float64
	hasPrevHist bool
	barsSeen    int
}

func newMACDGenerator(fastPeriod, slowPeriod, signalPeriod int) *macdGenerator {
	return &macdGenerator{
		fastPeriod:   fastPeriod,
		slowPeriod:   slowPeriod,
		signalPeriod: signalPeriod,
		fast:         newEMA(fastPeriod),
		slow:         newEMA(slowPeriod),
		signal:       newEMA(signalPeriod),
	}
}

func (g *macdGenerator) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", g.fastPeriod, g.slowPeriod, g.signalPeriod)
}

func (g *macdGenerator) Warmup() int { return g.slowPeriod + g.signalPeriod }

func (g *macdGenerator) OnBar(c Bar) Signal {
	g.barsSeen++
	fastVal := g.fast.update(c.Close)
	slowVal := g.slow.update(c.Close)
	macd := fastVal - slowVal
	signalVal := g.signal.update(macd)
	hist := macd - signalVal

	if g.barsSeen < g.Warmup() {
		g.prevHist = hist
		g.hasPrevHist = true
		return HoldSignal
	}

	if !g.hasPrevHist {
		g.prevHist = hist
		g.hasPrevHist = true
		return HoldSignal
	}

	defer func() { g.prevHist = hist }()

	switch {
	case g.prevHist <= 0 && hist > 0:
		return NewSignal(Buy, 0.5+minFloat(hist/(slowVal+1e-9), 0.5))
	case g.prevHist >= 0 && hist < 0:
		return NewSignal(Sell, 0.5+minFloat(-hist/(slowVal+1e-9), 0.5))
	default:
		return HoldSignal
	}
}

func (g *macdGenerator) Reset() {
	g.fast.reset()
	g.slow.reset()
	g.signal.reset()
	g.prevHist = 0
	g.hasPrevHist = false
	g.barsSeen = 0
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func macdPresets() []SingleConfig {
	return []SingleConfig{
		{Kind: KindMACD, Params: map[string]float64{"fast": 12, "slow": 26, "signal": 9}},
		{Kind: KindMACD, Params: map[string]float64{"fast": 5, "slow": 13, "signal": 5}},
		{Kind: KindMACD, Params: map[string]float64{"fast": 19, "slow": 39, "signal": 9}},
	}
}
