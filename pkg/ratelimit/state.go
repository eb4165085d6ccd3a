// Package ratelimit implements the fixed-window attempt budget that gates
// upstream catalog calls. State is shared by every caller of a limiter key.
package ratelimit

import (
	"time"
)

// Redis key prefix for rate limit windows.
const RedisKeyPrefix = "ratelimit:"

// DefaultKey is the process-wide budget key for upstream catalog requests.
const DefaultKey = "catalog_api_requests"

// RateWindow is the attempt counter of a single limiter key.
type RateWindow struct {
	// Attempts is the number of hits recorded since StartedAt.
	Attempts int `json:"attempts"`

	// StartedAt is when the first hit of this window was recorded.
	StartedAt time.Time `json:"started_at"`

	// Window is the length of the window.
	Window time.Duration `json:"window"`
}

// ResetAt returns when the window rolls over.
func (w *RateWindow) ResetAt() time.Time {
	return w.StartedAt.Add(w.Window)
}

// IsElapsed reports whether the window has rolled over at now.
func (w *RateWindow) IsElapsed(now time.Time) bool {
	return !now.Before(w.ResetAt())
}

// Exceeds reports whether the window holds at least maxAttempts hits.
func (w *RateWindow) Exceeds(maxAttempts int) bool {
	return w.Attempts >= maxAttempts
}

// TimeUntilReset returns the duration until the window rolls over.
// Returns 0 if the window already elapsed.
func (w *RateWindow) TimeUntilReset(now time.Time) time.Duration {
	duration := w.ResetAt().Sub(now)
	if duration < 0 {
		return 0
	}
	return duration
}

// Remaining returns how many attempts are left out of maxAttempts, never below zero.
func Remaining(maxAttempts, attempts int) int {
	if remaining := maxAttempts - attempts; remaining > 0 {
		return remaining
	}
	return 0
}

// Seconds rounds a wait duration up to whole seconds, so a live window never reports 0.
func Seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
