// Package discovery is the evolutionary discovery agent (C3): it generates
// candidate strategy configurations cycle after cycle, dedupes them against
// the result store, schedules backtests one at a time on a dedicated
// goroutine, and biases later cycles toward the neighbourhood of prior
// high scorers.
package discovery

import (
	"github.com/ajitpratap0/polydiscover/internal/signals"
	"github.com/ajitpratap0/polydiscover/pkg/backtest"
	"github.com/shopspring/decimal"
)

// Candidate is one strategy configuration queued for a backtest, tagged
// with the human-readable identity the result store and progress reports
// use.
type Candidate struct {
	Config       signals.StrategyConfig
	StrategyName string
	StrategyTag  string
}

// StartRequest is spec §4.3's `start(symbols, days, sizing_mode,
// initial_capital)` argument set.
type StartRequest struct {
	Symbols        []string
	Days           int
	Sizing         backtest.SizingMode
	InitialCapital decimal.Decimal
}

// TopEntry is one row of the in-memory top-N set (spec §4.3's "Top-N
// maintenance"): enough of a completed backtest to report in Progress and
// to seed cycle >= 3's mutation/crossover without re-querying the store.
type TopEntry struct {
	Fingerprint  string
	StrategyName string
	StrategyTag  string
	Symbol       string
	Candidate    Candidate
	Score        float64
	Result       backtest.Result
}

// Progress is spec §4.3's `status() -> Progress` snapshot.
type Progress struct {
	Status                  string // "idle" | "running"
	Phase                   string
	Cycle                   int
	TestsThisCycleCompleted int
	TestsThisCycleTotal     int
	TestsThisCycleSkipped   int
	TestsAllCycles          int
	CurrentStrategyName     string
	CurrentSymbol           string
	Best                    []TopEntry
}
