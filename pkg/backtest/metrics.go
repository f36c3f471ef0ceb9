package backtest

import (
	"math"

	"github.com/ajitpratap0/polydiscover/internal/candles"
	"github.com/ajitpratap0/polydiscover/internal/signals"
	"github.com/shopspring/decimal"
)

// buildResult folds a closed-trade ledger and its sampled equity curve into
// spec §4.2's full metrics set. candleSeries supplies the wall-clock span
// the annualization formulas need.
func buildResult(trades []Trade, equityCurve []decimal.Decimal, cfg Config, candleSeries []candles.Candle) *Result {
	res := &Result{
		Valid:          true,
		InitialCapital: cfg.InitialCapital,
		FinalEquity:    cfg.InitialCapital,
		TotalTrades:    len(trades),
	}

	if len(equityCurve) > 0 {
		res.FinalEquity = equityCurve[len(equityCurve)-1]
	}

	var grossPnL, totalFees, totalWin, totalLoss, totalVolume decimal.Decimal
	var returns, negativeReturns []float64
	consecutiveLosses, maxConsecutiveLosses := 0, 0

	for _, t := range trades {
		entryNotional := t.Shares.Mul(t.EntryPrice)
		exitNotional := t.Shares.Mul(t.ExitPrice)
		grossPnL = grossPnL.Add(exitNotional.Sub(entryNotional))
		totalFees = totalFees.Add(t.EntryFee).Add(t.ExitFee)
		totalVolume = totalVolume.Add(exitNotional)

		if t.NetPnL.IsPositive() {
			res.WinningTrades++
			totalWin = totalWin.Add(t.NetPnL)
			consecutiveLosses = 0
		} else {
			res.LosingTrades++
			totalLoss = totalLoss.Add(t.NetPnL)
			consecutiveLosses++
			if consecutiveLosses > maxConsecutiveLosses {
				maxConsecutiveLosses = consecutiveLosses
			}
		}

		r := t.ReturnPct / 100
		returns = append(returns, r)
		if r < 0 {
			negativeReturns = append(negativeReturns, r)
		}
	}

	res.GrossPnL = grossPnL
	res.TotalFees = totalFees
	res.NetPnL = grossPnL.Sub(totalFees)
	res.TotalVolume = totalVolume
	res.MaxConsecutiveLosses = maxConsecutiveLosses

	if res.TotalTrades > 0 {
		res.WinRatePct = float64(res.WinningTrades) / float64(res.TotalTrades) * 100
	}
	if res.WinningTrades > 0 {
		res.AvgWinPnL = totalWin.Div(decimal.NewFromInt(int64(res.WinningTrades)))
	}
	if res.LosingTrades > 0 {
		res.AvgLossPnL = totalLoss.Div(decimal.NewFromInt(int64(res.LosingTrades)))
	}

	// profit_factor: 0.0 sentinel when there's no losing side to divide by
	// (an intentional Open Question resolution, not an "infinite edge" claim).
	if !totalLoss.IsZero() {
		res.ProfitFactor = floatOf(totalWin) / math.Abs(floatOf(totalLoss))
	}

	res.SharpeRatio = sharpeOf(returns)
	res.SortinoRatio = sortinoOf(negativeReturns)

	res.MaxDrawdownAbs, res.MaxDrawdownPct = maxDrawdown(cfg.InitialCapital, equityCurve)

	if len(candleSeries) >= 2 {
		days := float64(candleSeries[len(candleSeries)-1].CloseTimeMs-candleSeries[0].OpenTimeMs) / 86_400_000
		if days > 0 {
			ratio := floatOf(res.FinalEquity) / floatOf(cfg.InitialCapital)
			res.AnnualizedReturnPct = (math.Pow(ratio, 365/days) - 1) * 100
			res.AnnualizedSharpe = res.SharpeRatio * math.Sqrt(365/days)
		}
	}

	return res
}

// sharpeOf returns mean/stddev of per-trade returns, 0.0 if there are fewer
// than two trades or the sample has zero variance.
func sharpeOf(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, stddev := meanStddev(returns)
	if stddev == 0 {
		return 0
	}
	return mean / stddev
}

// sortinoOf returns mean/stddev of negative per-trade returns only, 0.0 if
// there are none or fewer than two.
func sortinoOf(negativeReturns []float64) float64 {
	if len(negativeReturns) < 2 {
		return 0
	}
	mean, stddev := meanStddev(negativeReturns)
	if stddev == 0 {
		return 0
	}
	return mean / stddev
}

func meanStddev(xs []float64) (mean, stddev float64) {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))

	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	stddev = math.Sqrt(sumSq / float64(len(xs)))
	return mean, stddev
}

// maxDrawdown walks the sampled equity curve (one point per closed trade)
// tracking the running peak, starting from initial capital.
func maxDrawdown(initialCapital decimal.Decimal, equityCurve []decimal.Decimal) (decimal.Decimal, float64) {
	peak := initialCapital
	maxAbs := decimal.Zero
	maxPct := 0.0

	for _, equity := range equityCurve {
		if equity.GreaterThan(peak) {
			peak = equity
		}
		drawdown := peak.Sub(equity)
		if drawdown.GreaterThan(maxAbs) {
			maxAbs = drawdown
			if !peak.IsZero() {
				maxPct = floatOf(drawdown) / floatOf(peak) * 100
			}
		}
	}
	return maxAbs, maxPct
}

// quartileConfidence re-runs generator (after Reset) on four consecutive
// quartiles of candleSeries and scores how consistently it stayed
// profitable across them, per spec §4.2's strategy-confidence formula.
func quartileConfidence(generator signals.Generator, candleSeries []candles.Candle, cfg Config) (float64, bool) {
	n := len(candleSeries)
	if n < 4 {
		return 0, false
	}
	quarter := n / 4

	var winRates []float64
	positiveQuartiles := 0

	for q := 0; q < 4; q++ {
		start := q * quarter
		end := start + quarter
		if q == 3 {
			end = n
		}
		slice := candleSeries[start:end]
		if len(slice) < 2 {
			winRates = append(winRates, 0)
			continue
		}

		generator.Reset()
		trades, _ := simulate(generator, slice, cfg)
		qres := buildResult(trades, nil, cfg, slice)
		winRates = append(winRates, qres.WinRatePct)
		if qres.NetPnL.IsPositive() {
			positiveQuartiles++
		}
	}

	_, sigma := meanStddev(winRates)
	wrMin := winRates[0]
	for _, wr := range winRates[1:] {
		if wr < wrMin {
			wrMin = wr
		}
	}

	score := 100 * (0.5*float64(positiveQuartiles)/4 +
		0.3*math.Max(0, 1-sigma/50) +
		0.2*math.Max(0, wrMin/100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, true
}

// compositeScore implements spec §4.2's exact ranking formula.
func compositeScore(res *Result) float64 {
	netPnL := clampFloat(floatOf(res.NetPnL), -500, 500)
	sharpe := clampFloat(res.SharpeRatio, -3, 5)
	sortino := clampFloat(res.SortinoRatio, -3, 5)
	profitFactor := math.Min(res.ProfitFactor, 5)

	confidenceTerm := 0.0
	if res.StrategyConfidencePct != nil {
		confidenceTerm = *res.StrategyConfidencePct
	}

	consecutiveLossPenalty := 0.0
	switch {
	case res.MaxConsecutiveLosses >= 10:
		consecutiveLossPenalty = 100
	case res.MaxConsecutiveLosses >= 5:
		consecutiveLossPenalty = 50
	}

	return netPnL*1.0 +
		res.WinRatePct*2.0 +
		sharpe*30 -
		res.MaxDrawdownPct*2.0 +
		profitFactor*20 +
		confidenceTerm*3.0 +
		sortino*30 -
		consecutiveLossPenalty
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
