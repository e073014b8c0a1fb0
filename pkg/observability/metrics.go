// Package observability holds the Prometheus instruments shared across the
// application. Collectors are registered once via promauto on the default
// registry and exposed through /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreRequests counts round-trips to the remote cities store.
	StoreRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wanderlog",
		Name:      "store_requests_total",
		Help:      "Requests issued to the remote cities store, by operation and outcome.",
	}, []string{"operation", "outcome"})

	// GeocodeRequests counts reverse-geocoding lookups.
	GeocodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wanderlog",
		Name:      "geocode_requests_total",
		Help:      "Reverse-geocoding lookups, by outcome (ok, not_a_city, error).",
	}, []string{"outcome"})

	// HTTPRequestDuration observes gateway request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wanderlog",
		Name:      "http_request_duration_seconds",
		Help:      "Gateway request duration by method and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// Outcome labels used by the counters above.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
	OutcomeNotACity = "not_a_city"
)
