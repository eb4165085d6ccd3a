package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/catalog-client/pkg/ratelimit"
)

// DefaultBaseURL is the public catalog API.
const DefaultBaseURL = "https://fakestoreapi.com"

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "catalog-client/1.0"

// Config holds the client configuration.
type Config struct {
	// BaseURL of the upstream catalog API, without trailing slash
	BaseURL string

	// User-Agent header
	UserAgent string

	// Timeout bounds each attempt (request and body read)
	Timeout time.Duration

	// Retry
	MaxRetries  int           // Attempts per fetch, including the first
	BackoffBase time.Duration // Sleep after attempt n is BackoffBase * 2^n
	MaxBackoff  time.Duration

	// Caching
	CacheTTL time.Duration

	// Rate Limiting
	RateLimitMax    int           // Attempts allowed per window
	RateLimitWindow time.Duration // Fixed window length
	RateLimitKey    string        // Limiter key shared by every fetch
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		UserAgent:       DefaultUserAgent,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		BackoffBase:     1 * time.Second,
		MaxBackoff:      30 * time.Second,
		CacheTTL:        3600 * time.Second,
		RateLimitMax:    100,
		RateLimitWindow: 60 * time.Second,
		RateLimitKey:    ratelimit.DefaultKey,
	}
}

// Validate checks the configuration for values the client cannot work with.
func (c Config) Validate() error {
	var errs []error

	if c.BaseURL == "" {
		errs = append(errs, errors.New("base url is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive (got %s)", c.Timeout))
	}
	if c.MaxRetries <= 0 {
		errs = append(errs, fmt.Errorf("max_retries must be positive (got %d)", c.MaxRetries))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache_ttl must be positive (got %s)", c.CacheTTL))
	}
	if c.RateLimitMax <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit_max must be positive (got %d)", c.RateLimitMax))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit_window must be positive (got %s)", c.RateLimitWindow))
	}
	if c.BackoffBase < 0 {
		errs = append(errs, fmt.Errorf("backoff_base must not be negative (got %s)", c.BackoffBase))
	}

	return errors.Join(errs...)
}

// retryConfig derives the retry settings for a fetch.
func (c Config) retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: c.MaxRetries,
		BackoffBase: c.BackoffBase,
		MaxBackoff:  c.MaxBackoff,
	}
}
