package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Common errors returned by the client.
var (
	// ErrRateLimitExceeded is matched by failures raised when the local request
	// budget is spent. No upstream request was made.
	ErrRateLimitExceeded = errors.New("catalog rate limit exceeded")

	// ErrUpstreamUnavailable is matched by failures raised when every attempt failed.
	ErrUpstreamUnavailable = errors.New("catalog upstream unavailable")

	// ErrContextCancelled is returned when the context is cancelled during a fetch.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of attempt failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors other than 404.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses from the upstream.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError describes a single failed attempt.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("catalog %s error: %s: %v", e.ErrorClass, e.Message, e.Err)
		}
		return fmt.Sprintf("catalog %s error: %s", e.ErrorClass, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("catalog %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("catalog %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// FailureKind tells apart the two ways a fetch can fail.
type FailureKind int

const (
	// KindRateLimitExceeded means the request budget was spent before any attempt.
	KindRateLimitExceeded FailureKind = iota + 1

	// KindUpstreamUnavailable means all attempts failed.
	KindUpstreamUnavailable
)

// String returns the kind name used in logs.
func (k FailureKind) String() string {
	switch k {
	case KindRateLimitExceeded:
		return "rate_limit_exceeded"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	default:
		return "unknown"
	}
}

// Failure is the error returned by Fetch when no usable outcome was obtained.
//
// Use errors.Is with ErrRateLimitExceeded or ErrUpstreamUnavailable to branch
// on the kind, or errors.As to read the details.
type Failure struct {
	Kind     FailureKind
	Endpoint string

	// RetryAfter is how long until the request budget resets (rate limit only).
	RetryAfter time.Duration

	// Attempts is the number of upstream requests made.
	Attempts int

	// StatusCode and Class describe the last attempt (0 and "" for transport errors).
	StatusCode int
	Class      ErrorClass

	// Err is the last attempt error.
	Err error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	switch f.Kind {
	case KindRateLimitExceeded:
		return fmt.Sprintf("%v for %s (retry in %s)", ErrRateLimitExceeded, f.Endpoint, f.RetryAfter.Round(time.Second))
	default:
		if f.Err != nil {
			return fmt.Sprintf("%v for %s after %d attempts: %v", ErrUpstreamUnavailable, f.Endpoint, f.Attempts, f.Err)
		}
		return fmt.Sprintf("%v for %s after %d attempts", ErrUpstreamUnavailable, f.Endpoint, f.Attempts)
	}
}

// Is reports whether target is the sentinel for this failure's kind.
func (f *Failure) Is(target error) bool {
	switch target {
	case ErrRateLimitExceeded:
		return f.Kind == KindRateLimitExceeded
	case ErrUpstreamUnavailable:
		return f.Kind == KindUpstreamUnavailable
	default:
		return false
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (f *Failure) Unwrap() error {
	return f.Err
}

// classifyError categorizes an attempt failure for observability.
func classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		// 1xx/3xx leftovers that the transport did not resolve
		return ErrorClassServer
	}
}

// classOf extracts the class of an attempt error.
func classOf(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ErrorClassNetwork
}
