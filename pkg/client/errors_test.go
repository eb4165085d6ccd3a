package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		err      error
		expected ErrorClass
	}{
		{name: "transport error", err: errors.New("connection refused"), expected: ErrorClassNetwork},
		{name: "429 too many requests", status: http.StatusTooManyRequests, expected: ErrorClassRateLimit},
		{name: "400 bad request", status: http.StatusBadRequest, expected: ErrorClassClient},
		{name: "403 forbidden", status: http.StatusForbidden, expected: ErrorClassClient},
		{name: "500 internal error", status: http.StatusInternalServerError, expected: ErrorClassServer},
		{name: "503 unavailable", status: http.StatusServiceUnavailable, expected: ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.err == nil {
				resp = &http.Response{StatusCode: tt.status}
			}
			if got := classifyError(resp, tt.err); got != tt.expected {
				t.Errorf("classifyError() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "error with wrapped error",
			apiError: &APIError{
				StatusCode: 500,
				ErrorClass: ErrorClassServer,
				Message:    "internal server error",
				Err:        errors.New("connection reset"),
			},
			expected: "catalog server error (status 500): internal server error: connection reset",
		},
		{
			name: "error without wrapped error",
			apiError: &APIError{
				StatusCode: 429,
				ErrorClass: ErrorClassRateLimit,
				Message:    "429 Too Many Requests",
			},
			expected: "catalog rate_limit error (status 429): 429 Too Many Requests",
		},
		{
			name: "transport error without status",
			apiError: &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        errors.New("dial tcp: refused"),
			},
			expected: "catalog network error: request failed: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.apiError.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	apiErr := &APIError{StatusCode: 502, ErrorClass: ErrorClassServer, Err: baseErr}

	if !errors.Is(apiErr, baseErr) {
		t.Error("errors.Is should find the wrapped error")
	}

	var target *APIError
	if !errors.As(fmt.Errorf("wrapped: %w", apiErr), &target) {
		t.Fatal("errors.As should find APIError")
	}
	if target.StatusCode != 502 {
		t.Errorf("StatusCode = %d, want 502", target.StatusCode)
	}
}

func TestFailure_Is(t *testing.T) {
	rateLimited := &Failure{Kind: KindRateLimitExceeded, Endpoint: "/products", RetryAfter: 12 * time.Second}
	unavailable := &Failure{Kind: KindUpstreamUnavailable, Endpoint: "/products/1", Attempts: 3,
		Err: &APIError{StatusCode: 500, ErrorClass: ErrorClassServer, Message: "500 Internal Server Error"}}

	tests := []struct {
		name    string
		err     error
		target  error
		matches bool
	}{
		{name: "rate limit matches its sentinel", err: rateLimited, target: ErrRateLimitExceeded, matches: true},
		{name: "rate limit is not unavailable", err: rateLimited, target: ErrUpstreamUnavailable, matches: false},
		{name: "unavailable matches its sentinel", err: unavailable, target: ErrUpstreamUnavailable, matches: true},
		{name: "unavailable is not rate limit", err: unavailable, target: ErrRateLimitExceeded, matches: false},
		{name: "match survives wrapping", err: fmt.Errorf("list: %w", unavailable), target: ErrUpstreamUnavailable, matches: true},
		{name: "cancellation is neither", err: ErrContextCancelled, target: ErrUpstreamUnavailable, matches: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.matches {
				t.Errorf("errors.Is() = %v, want %v", got, tt.matches)
			}
		})
	}

	var apiErr *APIError
	if !errors.As(unavailable, &apiErr) || apiErr.StatusCode != 500 {
		t.Error("Failure should unwrap to the last attempt error")
	}
}

func TestFailure_Error(t *testing.T) {
	rateLimited := &Failure{Kind: KindRateLimitExceeded, Endpoint: "/products", RetryAfter: 12 * time.Second}
	if got, want := rateLimited.Error(), "catalog rate limit exceeded for /products (retry in 12s)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	unavailable := &Failure{Kind: KindUpstreamUnavailable, Endpoint: "/products/1", Attempts: 3, Err: errors.New("timeout")}
	if got, want := unavailable.Error(), "catalog upstream unavailable for /products/1 after 3 attempts: timeout"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFailureKind_String(t *testing.T) {
	if KindRateLimitExceeded.String() != "rate_limit_exceeded" {
		t.Errorf("String() = %q", KindRateLimitExceeded.String())
	}
	if KindUpstreamUnavailable.String() != "upstream_unavailable" {
		t.Errorf("String() = %q", KindUpstreamUnavailable.String())
	}
}
