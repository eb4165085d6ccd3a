package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/catalog-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for upstream requests.
var (
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total catalog requests by endpoint and status",
	}, []string{"endpoint", "status"})

	catalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Catalog request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	catalogErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_errors_total",
		Help: "Total catalog attempt errors by class",
	}, []string{"class"})
)

// Fetcher performs rate-limited GET requests against the catalog API and
// retries failed attempts with exponential backoff.
type Fetcher struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
	config     Config
	retry      RetryConfig
	logger     zerolog.Logger
}

// NewFetcher creates a fetcher. The config is expected to be validated.
func NewFetcher(cfg Config, limiter ratelimit.Limiter, logger zerolog.Logger) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RateLimitKey == "" {
		cfg.RateLimitKey = ratelimit.DefaultKey
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Fetcher{
		// Per-attempt deadlines come from the request context.
		httpClient: &http.Client{},
		limiter:    limiter,
		config:     cfg,
		retry:      cfg.retryConfig(),
		logger:     logger,
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (f *Fetcher) SetHTTPClient(client *http.Client) {
	f.httpClient = client
}

// Fetch GETs endpoint (a path such as "/products/1").
//
// It returns a Result for 2xx and 404 answers. Otherwise the error is a
// *Failure, or wraps ErrContextCancelled if ctx ended first.
func (f *Fetcher) Fetch(ctx context.Context, endpoint string) (Result, error) {
	label := endpointLabel(endpoint)

	if f.limiter.TooManyAttempts(ctx, f.config.RateLimitKey, f.config.RateLimitMax) {
		retryAfter := f.limiter.AvailableIn(ctx, f.config.RateLimitKey)
		f.logger.Warn().
			Str("endpoint", endpoint).
			Dur("retry_after", retryAfter).
			Msg("Request blocked by rate limiter")
		catalogRequestsTotal.WithLabelValues(label, "rate_limited").Inc()
		return Result{}, &Failure{
			Kind:       KindRateLimitExceeded,
			Endpoint:   endpoint,
			RetryAfter: retryAfter,
		}
	}

	var result Result
	attempts, err := retryWithBackoff(ctx, f.retry, f.logger.With().Str("endpoint", endpoint).Logger(),
		func(ctx context.Context, attempt int) error {
			f.limiter.Hit(ctx, f.config.RateLimitKey, f.config.RateLimitWindow)

			res, err := f.attempt(ctx, endpoint, label)
			if err != nil {
				errClass := classOf(err)
				catalogErrorsTotal.WithLabelValues(string(errClass)).Inc()
				f.logger.Warn().
					Err(err).
					Str("endpoint", endpoint).
					Int("attempt", attempt).
					Int("max_attempts", f.retry.MaxAttempts).
					Str("error_class", string(errClass)).
					Msg("Catalog request attempt failed")
				return err
			}

			result = res
			return nil
		})
	if err != nil {
		if errors.Is(err, ErrContextCancelled) {
			return Result{}, err
		}

		failure := &Failure{
			Kind:     KindUpstreamUnavailable,
			Endpoint: endpoint,
			Attempts: attempts,
			Class:    classOf(err),
			Err:      err,
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			failure.StatusCode = apiErr.StatusCode
		}
		return Result{}, failure
	}

	result.Attempts = attempts
	f.logger.Debug().
		Str("endpoint", endpoint).
		Str("outcome", result.Outcome.String()).
		Int("attempts", attempts).
		Msg("Catalog request complete")
	return result, nil
}

// attempt performs a single request bounded by the configured timeout.
func (f *Fetcher) attempt(ctx context.Context, endpoint, label string) (Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	startTime := time.Now()
	defer func() {
		catalogRequestDuration.WithLabelValues(label).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, f.config.BaseURL+endpoint, nil)
	if err != nil {
		return Result{}, &APIError{ErrorClass: ErrorClassNetwork, Message: "create request", Err: err}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		catalogRequestsTotal.WithLabelValues(label, "network_error").Inc()
		return Result{}, &APIError{
			ErrorClass: classifyError(nil, err),
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	catalogRequestsTotal.WithLabelValues(label, strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return Result{Outcome: OutcomeNotFound, StatusCode: resp.StatusCode}, nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Result{}, &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: ErrorClassNetwork,
				Message:    "read body",
				Err:        err,
			}
		}
		return Result{Outcome: OutcomeFound, StatusCode: resp.StatusCode, Body: body}, nil

	default:
		io.Copy(io.Discard, resp.Body)
		return Result{}, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyError(resp, nil),
			Message:    resp.Status,
		}
	}
}

// endpointLabel replaces numeric path segments so metrics stay low-cardinality.
func endpointLabel(endpoint string) string {
	segments := strings.Split(endpoint, "/")
	for i, s := range segments {
		if s == "" {
			continue
		}
		if _, err := strconv.Atoi(s); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
