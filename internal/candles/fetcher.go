package candles

import "context"

// Fetcher is the external candle-data collaborator spec.md §6 names as
// out of scope for the core but whose contract the discovery agent
// depends on: `fetch(symbol, interval, from, to) -> []Candle`.
//
// Implementations must return candles sorted strictly by OpenTimeMs, with
// no gaps longer than one interval and no duplicates; pagination against
// any upstream page size is the implementation's responsibility, not the
// caller's.
type Fetcher interface {
	Fetch(ctx context.Context, symbol, interval string, fromMs, toMs int64) ([]Candle, error)
}

// FetchError distinguishes the "transient external" failure class from
// spec §7's error taxonomy — the discovery agent skips the candidate and
// logs rather than aborting the whole cycle.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return "candle fetch failed for " + e.Symbol + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }
