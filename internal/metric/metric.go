package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface.
	RequestMetrics = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  "storefront",
		Subsystem:  "http",
		Name:       "request",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"status"})

	// Throttle decisions and state.
	ThrottleDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "throttle",
		Name:      "decisions_total",
		Help:      "Admission decisions by outcome",
	}, []string{"outcome"}) // allowed / denied

	ThrottleKeys = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Subsystem: "throttle",
		Name:      "tracked_keys",
		Help:      "Client keys currently tracked by the rate limiter",
	})

	// Fulfillment pipeline.
	FulfillmentStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "fulfillment",
		Name:      "step_duration_seconds",
		Help:      "Duration of each fulfillment step",
		Buckets:   prometheus.DefBuckets,
	}, []string{"step", "status"}) // ok / error / skipped

	// Order numbering.
	AllocationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "numbering",
		Name:      "fallback_total",
		Help:      "Allocations that fell back to a timestamp-derived sequence",
	})

	// Ledger store operations.
	LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "ledger",
		Name:      "operations_total",
		Help:      "Ledger store operations by outcome",
	}, []string{"operation", "status"})

	// Read-side catalog cache.
	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Catalog cache lookups by result",
	}, []string{"result"}) // hit / miss
)

func ObserveRequest(t time.Duration, status int) {
	RequestMetrics.WithLabelValues(strconv.Itoa(status)).Observe(t.Seconds())
}
