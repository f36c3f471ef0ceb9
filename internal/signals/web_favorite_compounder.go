package signals

import "fmt"

// favoriteCompounderGenerator implements spec §4.1's FavoriteCompounder:
// enters only when the series-relative estimated probability already
// favors YES (estimated_prob >= min_probability) and price confirms by
// trading above its SMA; exits once the position has compounded a
// take_profit gain from its entry price.
type favoriteCompounderGenerator struct {
	period         int
	minProbability float64
	takeProfit     float64

	baselineClose float64
	hasBaseline   bool

	smaWindow *sma

	inPosition bool
	entryPrice float64
}

func newFavoriteCompounderGenerator(period int, minProbability, takeProfit float64) *favoriteCompounderGenerator {
	return &favoriteCompounderGenerator{period: period, minProbability: minProbability, takeProfit: takeProfit, smaWindow: newSMA(period)}
}

func (g *favoriteCompounderGenerator) Name() string {
	return fmt.Sprintf("FavoriteCompounder(%d,%.2f,%.3f)", g.period, g.minProbability, g.takeProfit)
}

func (g *favoriteCompounderGenerator) Warmup() int { return g.period }

func (g *favoriteCompounderGenerator) OnBar(c Bar) Signal {
	if !g.hasBaseline {
		g.baselineClose = c.Close
		g.hasBaseline = true
	}

	smaVal, ok := g.smaWindow.update(c.Close)
	if !ok {
		return HoldSignal
	}

	if g.inPosition {
		gain := (c.Close - g.entryPrice) / g.entryPrice
		if gain >= g.takeProfit {
			g.inPosition = false
			return NewSignal(Sell, 0.5+minFloat(gain, 0.5))
		}
		return HoldSignal
	}

	estimatedProb := estimatePolyProbability(g.baselineClose, c.Close)
	if estimatedProb >= g.minProbability && c.Close > smaVal {
		g.inPosition = true
		g.entryPrice = c.Close
		return NewSignal(Buy, 0.5+minFloat(estimatedProb-g.minProbability, 0.4))
	}
	return HoldSignal
}

func (g *favoriteCompounderGenerator) Reset() {
	g.hasBaseline = false
	g.baselineClose = 0
	g.smaWindow.reset()
	g.inPosition = false
	g.entryPrice = 0
}

func favoriteCompounderDefaultConfig() WebConfig {
	return WebConfig{ID: WebFavoriteCompounder, Params: map[string]float64{
		"period": 20, "min_probability": 0.55, "take_profit": 0.05,
	}}
}
