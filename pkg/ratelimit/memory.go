package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps rate windows in process memory.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*RateWindow
	now     func() time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter creates an empty in-memory limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*RateWindow),
		now:     time.Now,
	}
}

// SetClock replaces the time source (for testing).
func (l *MemoryLimiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// TooManyAttempts implements Limiter.
func (l *MemoryLimiter) TooManyAttempts(_ context.Context, key string, maxAttempts int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.liveWindow(key)
	if w == nil || !w.Exceeds(maxAttempts) {
		return false
	}

	rateLimitBlocksTotal.WithLabelValues(key).Inc()
	return true
}

// Hit implements Limiter.
func (l *MemoryLimiter) Hit(_ context.Context, key string, window time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.liveWindow(key)
	if w == nil {
		w = &RateWindow{StartedAt: l.now(), Window: window}
		l.windows[key] = w
	}
	w.Attempts++

	rateLimitAttempts.WithLabelValues(key).Set(float64(w.Attempts))
}

// AvailableIn implements Limiter.
func (l *MemoryLimiter) AvailableIn(_ context.Context, key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.liveWindow(key)
	if w == nil {
		return 0
	}
	return w.TimeUntilReset(l.now())
}

// Attempts implements Limiter.
func (l *MemoryLimiter) Attempts(_ context.Context, key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.liveWindow(key)
	if w == nil {
		return 0
	}
	return w.Attempts
}

// Window returns a copy of the live window of key, if any.
func (l *MemoryLimiter) Window(key string) (RateWindow, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.liveWindow(key)
	if w == nil {
		return RateWindow{}, false
	}
	return *w, true
}

// liveWindow returns the window of key, dropping it once elapsed. Caller holds mu.
func (l *MemoryLimiter) liveWindow(key string) *RateWindow {
	w, ok := l.windows[key]
	if !ok {
		return nil
	}
	if w.IsElapsed(l.now()) {
		delete(l.windows, key)
		return nil
	}
	return w
}
