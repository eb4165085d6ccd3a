package ratelimit

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitAttempts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "catalog_rate_limit_attempts",
		Help: "Attempts recorded in the current rate limit window by key",
	}, []string{"key"})

	rateLimitBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_rate_limit_blocks_total",
		Help: "Total number of budget checks that reported too many attempts",
	}, []string{"key"})

	rateLimitBackendErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_rate_limit_backend_errors_total",
		Help: "Total number of rate limit backend errors by operation",
	}, []string{"operation"})
)

// Limiter tracks attempts per key in a fixed window.
//
// Implementations are best-effort: they never return errors and must be
// safe for concurrent use. Increments on a key are atomic.
type Limiter interface {
	// TooManyAttempts reports whether key holds at least maxAttempts hits in its live window.
	TooManyAttempts(ctx context.Context, key string, maxAttempts int) bool

	// Hit records one attempt, starting a new window of the given length if none is live.
	Hit(ctx context.Context, key string, window time.Duration)

	// AvailableIn returns the time until the live window of key rolls over (0 if none).
	AvailableIn(ctx context.Context, key string) time.Duration

	// Attempts returns the hits recorded in the live window of key.
	Attempts(ctx context.Context, key string) int
}
