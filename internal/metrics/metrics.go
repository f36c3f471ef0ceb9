// Package metrics exposes Prometheus instrumentation for the discovery
// loop and its HTTP status/query surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Discovery loop metrics.
var (
	CycleNumber = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polydiscover_discovery_cycle",
		Help: "Current discovery cycle number (0 = initial broad scan)",
	})

	BacktestsRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polydiscover_backtests_total",
		Help: "Total backtests executed by the discovery loop",
	}, []string{"phase"})

	BacktestsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polydiscover_backtests_skipped_total",
		Help: "Total candidates skipped because their fingerprint already exists in the result store",
	}, []string{"phase"})

	BacktestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polydiscover_backtest_duration_ms",
		Help:    "Duration of a single candidate backtest in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	CandleFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polydiscover_candle_fetch_errors_total",
		Help: "Total candle fetch failures by symbol",
	}, []string{"symbol"})

	TopCompositeScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polydiscover_top_composite_score",
		Help: "Composite score of the best strategy found so far",
	})

	DiscoveryRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polydiscover_discovery_running",
		Help: "1 if the discovery loop is currently running, 0 if idle",
	})
)

// HTTP surface metrics.
var (
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polydiscover_api_request_duration_ms",
		Help:    "API request duration in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"method", "path", "status_code"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polydiscover_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status_code"})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polydiscover_errors_total",
		Help: "Total number of errors by type and component",
	}, []string{"type", "component"})
)

// RecordError records an error by type and originating component.
func RecordError(errorType, component string) {
	Errors.WithLabelValues(errorType, component).Inc()
}

// RecordBacktest records one completed or skipped candidate evaluation.
func RecordBacktest(phase string, skipped bool, durationMs float64) {
	if skipped {
		BacktestsSkipped.WithLabelValues(phase).Inc()
		return
	}
	BacktestsRun.WithLabelValues(phase).Inc()
	BacktestDuration.Observe(durationMs)
}

// RecordCandleFetchError records a failed external candle fetch.
func RecordCandleFetchError(symbol string) {
	CandleFetchErrors.WithLabelValues(symbol).Inc()
}

// SetDiscoveryRunning updates the running/idle gauge.
func SetDiscoveryRunning(running bool) {
	if running {
		DiscoveryRunning.Set(1)
	} else {
		DiscoveryRunning.Set(0)
	}
}

// RecordAPIRequest records an HTTP request with its outcome.
func RecordAPIRequest(method, path, statusCode string, durationMs float64) {
	APIRequestDuration.WithLabelValues(method, path, statusCode).Observe(durationMs)
	HTTPRequests.WithLabelValues(method, path, statusCode).Inc()
}
