// Package metrics exposes Prometheus instrumentation for outbound API traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "committee_client",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of outbound API requests.",
		},
		[]string{"method", "path", "status"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "committee_client",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	networkFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "committee_client",
			Subsystem: "api",
			Name:      "network_failures_total",
			Help:      "Total number of requests that failed before receiving a response.",
		},
	)

	sessionExpiries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "committee_client",
			Subsystem: "session",
			Name:      "expiries_total",
			Help:      "Total number of server-signaled session expiries (HTTP 401/403).",
		},
	)

	debounceFlushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "committee_client",
			Subsystem: "draw",
			Name:      "debounce_flushes_total",
			Help:      "Total number of debounced draw-amount updates flushed to the server.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		apiRequests,
		apiDuration,
		networkFailures,
		sessionExpiries,
		debounceFlushes,
	)
}

// ObserveRequest records a completed request and its latency.
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	apiRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	apiDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveNetworkFailure records a request that never produced a response.
func ObserveNetworkFailure() {
	networkFailures.Inc()
}

// ObserveSessionExpiry records a forced logout triggered by the server.
func ObserveSessionExpiry() {
	sessionExpiries.Inc()
}

// ObserveDebounceFlush records a debounced draw-amount write.
func ObserveDebounceFlush(outcome string) {
	debounceFlushes.WithLabelValues(outcome).Inc()
}
