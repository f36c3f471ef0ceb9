package candles

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
)

// Interval is the only candle interval this engine operates on (spec §1).
const Interval = "15m"

// CachedFetcher wraps a Fetcher with a 6-hour-refreshing cache keyed by
// (symbol, days), following internal/market/cache.go's
// CachedCoinGeckoClient wrap-with-TTL shape. A nil Redis client falls back
// to an in-process TTL map so the discovery agent works standalone.
type CachedFetcher struct {
	fetcher Fetcher
	redis   *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	breaker *gobreaker.CircuitBreaker

	mu    sync.Mutex
	local map[string]localEntry
}

type localEntry struct {
	candles []Candle
	expires time.Time
}

// NewCachedFetcher builds a cache in front of fetcher. redisClient may be
// nil.
func NewCachedFetcher(fetcher Fetcher, redisClient *redis.Client, ttl time.Duration) *CachedFetcher {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "candle_fetcher",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
	})

	return &CachedFetcher{
		fetcher: fetcher,
		redis:   redisClient,
		ttl:     ttl,
		breaker: breaker,
		local:   make(map[string]localEntry),
	}
}

// GetOrFetch returns the cached candle series for (symbol, days), fetching
// from the underlying Fetcher on a miss or stale entry, per spec §4.3's
// "candle_cache.get_or_fetch(symbol, days) // refresh every 6h". Concurrent
// calls for the same key collapse into a single upstream fetch.
func (c *CachedFetcher) GetOrFetch(ctx context.Context, symbol string, days int) ([]Candle, error) {
	key := fmt.Sprintf("candles:%s:%dd", symbol, days)

	if cached, ok := c.get(ctx, key); ok {
		return cached, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if cached, ok := c.get(ctx, key); ok {
			return cached, nil
		}

		toMs := time.Now().UnixMilli()
		fromMs := toMs - int64(days)*24*60*60*1000

		out, err := c.breaker.Execute(func() (interface{}, error) {
			return c.fetcher.Fetch(ctx, symbol, Interval, fromMs, toMs)
		})
		if err != nil {
			return nil, &FetchError{Symbol: symbol, Err: err}
		}

		candlesOut := out.([]Candle)
		c.set(ctx, key, candlesOut)
		return candlesOut, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]Candle), nil
}

func (c *CachedFetcher) get(ctx context.Context, key string) ([]Candle, bool) {
	if c.redis != nil {
		raw, err := c.redis.Get(ctx, key).Result()
		if err == nil {
			var out []Candle
			if jerr := json.Unmarshal([]byte(raw), &out); jerr == nil {
				log.Debug().Str("cache_key", key).Msg("candle cache hit (redis)")
				return out, true
			}
		} else if err != redis.Nil {
			log.Warn().Err(err).Str("cache_key", key).Msg("redis error during candle cache lookup")
		}
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.local[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	log.Debug().Str("cache_key", key).Msg("candle cache hit (in-process)")
	return entry.candles, true
}

func (c *CachedFetcher) set(ctx context.Context, key string, out []Candle) {
	if c.redis != nil {
		data, err := json.Marshal(out)
		if err != nil {
			log.Warn().Err(err).Msg("failed to marshal candles for cache")
			return
		}
		go func() {
			cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := c.redis.Set(cacheCtx, key, data, c.ttl).Err(); err != nil {
				log.Warn().Err(err).Str("cache_key", key).Msg("failed to cache candles")
			}
		}()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.local[key] = localEntry{candles: out, expires: time.Now().Add(c.ttl)}
}
