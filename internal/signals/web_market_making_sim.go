package signals

import "fmt"

// marketMakingSimGenerator implements spec §4.1's MarketMakingSim: quotes
// a synthetic bid/ask around a rolling mid-price and fires Buy when close
// trades through the bid (and simulated inventory has room to grow
// long), Sell when it trades through the ask (and inventory has room to
// go short) — the classic "get paid the spread" market-making edge.
type marketMakingSimGenerator struct {
	period     int
	spread     float64
	limit      float64

	midWindow *sma
	inventory float64
}

func newMarketMakingSimGenerator(period int, spread, limit float64) *marketMakingSimGenerator {
	return &marketMakingSimGenerator{period: period, spread: spread, limit: limit, midWindow: newSMA(period)}
}

func (g *marketMakingSimGenerator) Name() string {
	return fmt.Sprintf("MarketMakingSim(%d,%.4f,%.1f)", g.period, g.spread, g.limit)
}

func (g *marketMakingSimGenerator) Warmup() int { return g.period }

func (g *marketMakingSimGenerator) OnBar(c Bar) Signal {
	mid, ok := g.midWindow.update(c.Close)
	if !ok {
		return HoldSignal
	}

	bid := mid * (1 - g.spread/2)
	ask := mid * (1 + g.spread/2)

	switch {
	case c.Close < bid && g.inventory < g.limit:
		g.inventory++
		return NewSignal(Buy, 0.5+minFloat((bid-c.Close)/bid*10, 0.3))
	case c.Close > ask && g.inventory > -g.limit:
		g.inventory--
		return NewSignal(Sell, 0.5+minFloat((c.Close-ask)/ask*10, 0.3))
	default:
		return HoldSignal
	}
}

func (g *marketMakingSimGenerator) Reset() {
	g.midWindow.reset()
	g.inventory = 0
}

func marketMakingSimDefaultConfig() WebConfig {
	return WebConfig{ID: WebMarketMakingSim, Params: map[string]float64{
		"period": 10, "spread": 0.004, "limit": 5,
	}}
}
