// Package metrics exposes the Prometheus registry shared by the catalog client.
// All metrics are defined in their respective packages (client, cache, ratelimit,
// favorites) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the catalog client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects everything registered on Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the Prometheus exposition format for Gatherer.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - catalog_rate_limit_attempts{key} (Gauge): Attempts counted in the current window
//   - catalog_rate_limit_blocks_total{key} (Counter): Checks that found the budget spent
//   - catalog_rate_limit_backend_errors_total{operation} (Counter): Redis limiter errors (fail open)
//
// Cache Metrics (pkg/cache):
//   - catalog_cache_hits_total{layer} (Counter): Cache hits by layer ("memory", "redis")
//   - catalog_cache_misses_total (Counter): Cache misses
//   - catalog_cache_fills_total{outcome} (Counter): Entries stored after a miss ("found", "not_found")
//   - catalog_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - catalog_requests_total{endpoint, status} (Counter): Upstream requests by endpoint and HTTP status
//   - catalog_request_duration_seconds{endpoint} (Histogram): Attempt duration by endpoint
//   - catalog_errors_total{class} (Counter): Attempt errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - catalog_retries_total{error_class} (Counter): Retries by error class
//   - catalog_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - catalog_retry_exhausted_total{error_class} (Counter): Fetches that exhausted all attempts
//
// Favorites Metrics (pkg/favorites):
//   - catalog_favorites_pruned_total (Counter): Records deleted because the product is gone
//   - catalog_favorites_deferred_total (Counter): Records skipped because the lookup failed
//
// HTTP Metrics (internal/httpapi):
//   - catalog_http_requests_total{route, code} (Counter): Inbound requests
//   - catalog_http_request_duration_seconds{route} (Histogram): Inbound request latency
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(catalog_cache_hits_total[5m])) /
//   (sum(rate(catalog_cache_hits_total[5m])) + sum(rate(catalog_cache_misses_total[5m])))
//
//   # Upstream Error Rate
//   rate(catalog_errors_total[5m])
//
//   # P95 Attempt Latency
//   histogram_quantile(0.95, rate(catalog_request_duration_seconds_bucket[5m]))
//
//   # Budget Pressure
//   rate(catalog_rate_limit_blocks_total[5m]) > 0
