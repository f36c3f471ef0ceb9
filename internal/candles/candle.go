// Package candles defines the OHLCV data type the backtest engine and
// signal generators consume, the external fetcher contract that produces
// it, and a TTL-based cache in front of that fetcher.
package candles

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Candle is an immutable fixed-interval OHLCV summary of price history.
//
// Invariant: Low <= min(Open,Close) <= max(Open,Close) <= High, and
// CloseTimeMs > OpenTimeMs. Producers (the fetcher) must uphold this;
// consumers never mutate a Candle after construction.
type Candle struct {
	OpenTimeMs  int64
	Open        decimal.Decimal
	High        decimal.Decimal
	Low         decimal.Decimal
	Close       decimal.Decimal
	Volume      decimal.Decimal
	CloseTimeMs int64
}

// Validate reports whether the candle satisfies the OHLC ordering and
// timestamp invariants spec.md §3 requires of every candle.
func (c Candle) Validate() error {
	if c.CloseTimeMs <= c.OpenTimeMs {
		return fmt.Errorf("candle close_time %d must be after open_time %d", c.CloseTimeMs, c.OpenTimeMs)
	}
	hi := decimal.Max(c.Open, c.Close)
	lo := decimal.Min(c.Open, c.Close)
	if c.Low.GreaterThan(lo) {
		return fmt.Errorf("candle low %s exceeds min(open,close) %s", c.Low, lo)
	}
	if c.High.LessThan(hi) {
		return fmt.Errorf("candle high %s is below max(open,close) %s", c.High, hi)
	}
	return nil
}

// CloseFloat returns the close price as a float64, for the statistical
// (non-monetary) computations that are allowed to use binary floats —
// indicator math and ratio-based metrics, per SPEC_FULL.md's numeric
// precision note.
func (c Candle) CloseFloat() float64 {
	f, _ := c.Close.Float64()
	return f
}
