package client

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for retry operations.
var (
	catalogRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	catalogRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 4, 8, 16, 30},
	}, []string{"error_class"})

	catalogRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// BackoffBase is multiplied by 2^attempt after the attempt-th failure.
	BackoffBase time.Duration

	// MaxBackoff caps a single backoff sleep. Zero means no cap.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the default retry configuration: 3 attempts,
// sleeping 2s then 4s between them.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BackoffBase: 1 * time.Second,
		MaxBackoff:  30 * time.Second,
	}
}

// Backoff returns the sleep after the attempt-th failure (attempt starts at 1).
func (c RetryConfig) Backoff(attempt int) time.Duration {
	if c.BackoffBase <= 0 || attempt < 1 {
		return 0
	}

	backoff := c.BackoffBase
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if c.MaxBackoff > 0 && backoff >= c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	return backoff
}

// attemptFunc performs one attempt. A nil error ends the retry loop.
type attemptFunc func(ctx context.Context, attempt int) error

// retryWithBackoff runs fn until it succeeds or MaxAttempts is reached.
//
// It returns the number of attempts made and either nil, the last attempt
// error, or an error wrapping ErrContextCancelled when ctx ends first.
func retryWithBackoff(ctx context.Context, config RetryConfig, logger zerolog.Logger, fn attemptFunc) (int, error) {
	maxAttempts := config.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempts, fmt.Errorf("%w: %w", ErrContextCancelled, err)
		}

		attempts++
		err := fn(ctx, attempt)
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return attempts, nil
		}

		// A caller-side cancellation is not an upstream failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempts, fmt.Errorf("%w: %w", ErrContextCancelled, ctxErr)
		}

		lastErr = err
		errorClass := classOf(err)

		if attempt >= maxAttempts {
			break
		}

		backoff := config.Backoff(attempt)
		catalogRetriesTotal.WithLabelValues(string(errorClass)).Inc()
		catalogRetryBackoffSeconds.WithLabelValues(string(errorClass)).Observe(backoff.Seconds())

		logger.Debug().
			Str("error_class", string(errorClass)).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("Retrying request after backoff")

		if backoff <= 0 {
			continue
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Warn().
				Str("error_class", string(errorClass)).
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return attempts, fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		case <-timer.C:
		}
	}

	errorClass := classOf(lastErr)
	catalogRetryExhaustedTotal.WithLabelValues(string(errorClass)).Inc()
	logger.Warn().
		Err(lastErr).
		Str("error_class", string(errorClass)).
		Int("max_attempts", maxAttempts).
		Msg("Retry attempts exhausted")

	return attempts, lastErr
}
