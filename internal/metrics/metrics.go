// Package metrics defines Prometheus metrics for apidex.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "apidex"

// HTTP server metrics (mock directory server).
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last /healthz probe succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last /readyz probe found the catalog seeded, 0 otherwise.",
	})
)

// Directory operation metrics (mock directory server).
var (
	APIOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_operations_total",
		Help:      "Total number of directory operations by operation ID and outcome (success, not_found, invalid, error).",
	}, []string{"operation", "outcome"})

	APIOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_operation_duration_seconds",
		Help:      "Duration of directory operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// Directory client metrics.
var (
	ClientRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "client_request_duration_seconds",
		Help:      "Duration of directory API calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	ClientErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_errors_total",
		Help:      "Total number of failed directory API calls by kind (transport, api).",
	}, []string{"endpoint", "kind"})
)

// Explore session metrics.
var (
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "explore_fetches_total",
		Help:      "Total number of page fetches by mode (replace, append).",
	}, []string{"mode"})

	FetchesSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "explore_fetches_suppressed_total",
		Help:      "Total number of fetches skipped because the params matched the previous request.",
	})

	StalePagesDiscardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "explore_stale_pages_discarded_total",
		Help:      "Total number of page responses dropped because a newer session started.",
	})

	ItemsAppendedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "explore_items_appended_total",
		Help:      "Total number of items appended to accumulated lists after dedup.",
	})

	DuplicateItemsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "explore_duplicate_items_dropped_total",
		Help:      "Total number of incoming items dropped because their apiId was already listed.",
	})
)

// Local state metrics.
var (
	RecentSearchWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recent_search_writes_total",
		Help:      "Total number of recent-search writes by operation (add, remove, clear).",
	}, []string{"op"})

	StorageCorruptReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_corrupt_reads_total",
		Help:      "Total number of stored values that failed to parse and were treated as empty.",
	}, []string{"key"})

	CompareRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "compare_rejections_total",
		Help:      "Total number of compare additions rejected at the selection limit.",
	})

	PricingCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pricing_cache_hits_total",
		Help:      "Total number of pricing lookups served from cache.",
	})
)
