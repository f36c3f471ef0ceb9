// Discovery agent CLI: wires config, result store, candle fetcher and the
// discovery agent together into one long-running background loop, and
// logs its status until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/polydiscover/internal/api"
	"github.com/ajitpratap0/polydiscover/internal/candles"
	"github.com/ajitpratap0/polydiscover/internal/config"
	"github.com/ajitpratap0/polydiscover/internal/discovery"
	"github.com/ajitpratap0/polydiscover/internal/store"
	"github.com/ajitpratap0/polydiscover/pkg/backtest"
)

var (
	configPath = flag.String("config", "", "Path to config YAML (defaults to ./configs/config.yaml or ./config.yaml)")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	config.InitLogger(level, "console")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	agent, db, err := buildAgent(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to wire discovery agent")
	}
	defer db.Close()

	apiServer := api.NewServer(api.Config{Host: cfg.API.Host, Port: cfg.API.Port, Agent: agent, Store: db})
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Error().Err(err).Msg("API server stopped unexpectedly")
		}
	}()

	req := discovery.StartRequest{
		Symbols:        cfg.Discovery.Symbols,
		Days:           cfg.Discovery.Days,
		Sizing:         sizingFromConfig(cfg.Sizing),
		InitialCapital: decimal.NewFromFloat(cfg.Discovery.InitialCapital),
	}

	handle := agent.Start(req)
	log.Info().
		Str("handle", handle).
		Strs("symbols", req.Symbols).
		Int("days", req.Days).
		Msg("discovery agent started")

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutdown signal received, cancelling discovery loop")
			agent.Cancel()
			logStatus(agent.Status())
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := apiServer.Stop(stopCtx); err != nil {
				log.Warn().Err(err).Msg("API server shutdown error")
			}
			stopCancel()
			log.Info().Msg("discovery agent stopped cleanly")
			return
		case <-ticker.C:
			logStatus(agent.Status())
		}
	}
}

func buildAgent(ctx context.Context, cfg *config.Config) (*discovery.Agent, *store.DB, error) {
	db, err := store.Open(cfg.Store.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open result store: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		return nil, nil, fmt.Errorf("migrate result store: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, falling back to in-process candle cache")
			redisClient = nil
		}
	}

	fetcher := candles.NewCachedFetcher(candles.NewBinanceFetcher(), redisClient, cfg.Discovery.CacheTTL())

	var seed int64 = time.Now().UnixNano()
	if cfg.Discovery.RNGSeed != nil {
		seed = *cfg.Discovery.RNGSeed
	}

	agent := discovery.NewAgent(discovery.AgentConfig{
		Fetcher:      fetcher,
		Store:        db,
		Fees:         feesFromConfig(cfg.Fees),
		RNGSeed:      seed,
		FetchTimeout: time.Duration(cfg.Fetcher.TimeoutSeconds) * time.Second,
	})
	return agent, db, nil
}

func feesFromConfig(f config.FeeConfig) backtest.FeeConfig {
	return backtest.FeeConfig{
		Rate:     f.Rate,
		Exponent: f.Exponent,
		Min:      f.Min,
	}
}

func sizingFromConfig(s config.SizingConfig) backtest.SizingMode {
	switch s.Mode {
	case "kelly":
		return backtest.KellySizing(s.Fraction)
	case "confidence":
		return backtest.ConfidenceScaledSizing(s.Base, s.Multiplier)
	default:
		return backtest.FixedSizing(decimal.NewFromFloat(s.Amount))
	}
}

func logStatus(p discovery.Progress) {
	event := log.Info().
		Str("status", p.Status).
		Str("phase", p.Phase).
		Int("cycle", p.Cycle).
		Int("tested_this_cycle", p.TestsThisCycleCompleted).
		Int("total_this_cycle", p.TestsThisCycleTotal).
		Int("skipped_this_cycle", p.TestsThisCycleSkipped).
		Int("tested_all_cycles", p.TestsAllCycles)
	if len(p.Best) > 0 {
		event = event.
			Str("leader", p.Best[0].StrategyName).
			Float64("leader_score", p.Best[0].Score)
	}
	event.Msg("discovery status")
}
