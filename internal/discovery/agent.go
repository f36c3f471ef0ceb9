package discovery

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ajitpratap0/polydiscover/internal/candles"
	"github.com/ajitpratap0/polydiscover/internal/metrics"
	"github.com/ajitpratap0/polydiscover/internal/signals"
	"github.com/ajitpratap0/polydiscover/internal/store"
	"github.com/ajitpratap0/polydiscover/pkg/backtest"
	"github.com/rs/zerolog/log"
)

// AgentConfig bundles the discovery agent's fixed dependencies, set once
// at construction (spec §6's discovery options, minus the per-request
// symbols/days/sizing/capital that arrive via StartRequest).
type AgentConfig struct {
	Fetcher      *candles.CachedFetcher
	Store        *store.DB
	Fees         backtest.FeeConfig
	RNGSeed      int64
	FetchTimeout time.Duration // spec §5: per-request timeout, default 30s
}

// Agent is the discovery agent (C3): one long-running background loop,
// grounded on internal/orchestrator/orchestrator.go's
// cancellable-context/RWMutex lifecycle (NewOrchestrator/Initialize/Run/
// Pause/Shutdown), narrowed to the single task this agent owns.
type Agent struct {
	cfg AgentConfig

	mu       sync.RWMutex
	running  bool
	handle   string
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	progress Progress
	top      topSet

	rng *rand.Rand
}

// NewAgent constructs an idle discovery agent.
func NewAgent(cfg AgentConfig) *Agent {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	seed := cfg.RNGSeed
	return &Agent{
		cfg:      cfg,
		progress: Progress{Status: "idle"},
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Start begins a background discovery loop for req, or — if one is
// already running — returns the existing handle untouched (spec §4.3:
// "start(...) -> handle, idempotent; starts a background loop if not
// already running").
func (a *Agent) Start(req StartRequest) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return a.handle
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.running = true
	a.handle = fmt.Sprintf("discovery-%d", time.Now().UnixNano())
	a.progress = Progress{Status: "running", Phase: "cycle0_phase1", Cycle: 0}
	a.top = topSet{}

	metrics.SetDiscoveryRunning(true)
	a.wg.Add(1)
	go a.run(ctx, req)

	return a.handle
}

// Cancel cooperatively stops the running loop (spec §5: checked between
// candidates, never interrupts a running backtest). It blocks until the
// loop has observed the cancellation and left its current cycle.
func (a *Agent) Cancel() {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	a.wg.Wait()
}

// Status returns a Progress snapshot, atomic with respect to concurrent
// top-N updates (spec §5).
func (a *Agent) Status() Progress {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snapshot := a.progress
	snapshot.Best = a.top.snapshot()
	return snapshot
}

func (a *Agent) run(ctx context.Context, req StartRequest) {
	defer a.wg.Done()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.progress.Status = "idle"
		a.mu.Unlock()
		metrics.SetDiscoveryRunning(false)
	}()

	cycle := 0
	for {
		if ctx.Err() != nil {
			return
		}

		candidates, phase, err := a.cycleCandidates(cycle)
		if err != nil {
			log.Error().Err(err).Int("cycle", cycle).Msg("failed to generate discovery cycle candidates")
			return
		}

		a.mu.Lock()
		a.progress.Cycle = cycle
		a.progress.Phase = phase
		a.progress.TestsThisCycleCompleted = 0
		a.progress.TestsThisCycleSkipped = 0
		a.progress.TestsThisCycleTotal = len(candidates) * len(req.Symbols)
		a.mu.Unlock()
		metrics.CycleNumber.Set(float64(cycle))

		if !a.runCycle(ctx, req, candidates) {
			return
		}

		cycle++
	}
}

// cycleCandidates dispatches to the right generator for cycle, per spec
// §4.3's cycle schedule. Cycle 0 covers both phase 1 (broad scan) and
// phase 2 (refinement of the phase-1 results) before a new cycle begins.
func (a *Agent) cycleCandidates(cycle int) ([]Candidate, string, error) {
	switch {
	case cycle == 0:
		phase1, err := generateCycle0Phase1()
		if err != nil {
			return nil, "", err
		}
		return phase1, "cycle0_phase1", nil
	case cycle == 1:
		c, err := generateCycle1()
		return c, "cycle1_interpolation", err
	case cycle == 2:
		c, err := generateCycle2(a.rng)
		return c, "cycle2_extension", err
	default:
		top := a.top.snapshot()
		c, err := generateEvolutionaryCycle(top, cycle, a.rng)
		return c, "evolutionary", err
	}
}

// runCycle evaluates every (symbol, candidate) pair in order, one
// backtest at a time (spec §5's "Backtests within a cycle run one at a
// time"). Returns false if the loop was cancelled mid-cycle.
func (a *Agent) runCycle(ctx context.Context, req StartRequest, candidates []Candidate) bool {
	for _, symbol := range req.Symbols {
		for _, candidate := range candidates {
			if ctx.Err() != nil {
				return false
			}
			a.runOne(ctx, req, symbol, candidate)
		}
	}

	// Cycle 0's phase 2 runs immediately after phase 1, sharing the same
	// cycle number, before the loop advances to cycle 1.
	a.mu.RLock()
	isPhase1 := a.progress.Cycle == 0 && a.progress.Phase == "cycle0_phase1"
	a.mu.RUnlock()
	if isPhase1 {
		top := a.top.snapshot()
		phase2, err := generateCycle0Phase2(top)
		if err != nil {
			log.Error().Err(err).Msg("failed to generate cycle 0 phase 2 candidates")
			return true
		}
		a.mu.Lock()
		a.progress.Phase = "cycle0_phase2"
		a.progress.TestsThisCycleTotal += len(phase2) * len(req.Symbols)
		a.mu.Unlock()

		for _, symbol := range req.Symbols {
			for _, candidate := range phase2 {
				if ctx.Err() != nil {
					return false
				}
				a.runOne(ctx, req, symbol, candidate)
			}
		}
	}

	return true
}

// runOne is spec §4.3's per-backtest loop body: fingerprint, dedup,
// fetch, backtest, persist, update progress and top-N.
func (a *Agent) runOne(ctx context.Context, req StartRequest, symbol string, candidate Candidate) {
	a.mu.RLock()
	phase := a.progress.Phase
	a.mu.RUnlock()

	a.mu.Lock()
	a.progress.CurrentStrategyName = candidate.StrategyName
	a.progress.CurrentSymbol = symbol
	a.mu.Unlock()

	start := time.Now()

	fp, err := Fingerprint(candidate.Config, symbol, req.Days, req.InitialCapital, req.Sizing)
	if err != nil {
		log.Error().Err(err).Str("strategy", candidate.StrategyName).Msg("failed to fingerprint candidate")
		metrics.RecordError("fingerprint", "discovery")
		return
	}

	exists, err := a.cfg.Store.Exists(ctx, fp)
	if err != nil {
		log.Error().Err(err).Msg("failed to check fingerprint existence")
		metrics.RecordError("store_exists", "discovery")
		return
	}
	if exists {
		a.mu.Lock()
		a.progress.TestsThisCycleSkipped++
		a.mu.Unlock()
		metrics.RecordBacktest(phase, true, 0)
		return
	}

	fetchCtx, fetchCancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	series, err := a.cfg.Fetcher.GetOrFetch(fetchCtx, symbol, req.Days)
	fetchCancel()
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("candle fetch failed, skipping candidate this cycle")
		metrics.RecordCandleFetchError(symbol)
		return
	}

	generator, err := signals.Build(candidate.Config)
	if err != nil {
		log.Error().Err(err).Str("strategy", candidate.StrategyName).Msg("failed to build generator")
		metrics.RecordError("build_generator", "discovery")
		return
	}

	result, err := backtest.Run(generator, series, backtest.Config{
		InitialCapital: req.InitialCapital,
		Sizing:         req.Sizing,
		Fees:           a.cfg.Fees,
	})
	if err != nil {
		log.Error().Err(err).Str("strategy", candidate.StrategyName).Msg("backtest run failed")
		metrics.RecordError("backtest_run", "discovery")
		return
	}

	stored := store.StoredResult{
		Fingerprint:  fp,
		StrategyName: candidate.StrategyName,
		StrategyTag:  candidate.StrategyTag,
		Symbol:       symbol,
		Days:         req.Days,
		SizingMode:   string(req.Sizing.Kind),
		Result:       *result,
		CreatedAtMs:  time.Now().UnixMilli(),
	}
	if _, err := a.cfg.Store.Insert(ctx, stored); err != nil {
		log.Error().Err(err).Str("fingerprint", fp).Msg("failed to persist backtest result")
		metrics.RecordError("store_insert", "discovery")
		return
	}

	metrics.RecordBacktest(phase, false, float64(time.Since(start).Milliseconds()))

	a.mu.Lock()
	a.progress.TestsThisCycleCompleted++
	a.progress.TestsAllCycles++
	a.top.insert(TopEntry{
		Fingerprint:  fp,
		StrategyName: candidate.StrategyName,
		StrategyTag:  candidate.StrategyTag,
		Symbol:       symbol,
		Candidate:    candidate,
		Score:        result.CompositeScore,
		Result:       *result,
	})
	if best := a.top.snapshot(); len(best) > 0 {
		metrics.TopCompositeScore.Set(best[0].Score)
	}
	a.mu.Unlock()
}
