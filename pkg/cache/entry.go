package cache

import (
	"net/http"
	"time"
)

// CacheEntry represents a cached upstream outcome.
type CacheEntry struct {
	// Key is the cache key the entry is stored under
	Key string `json:"key"`

	// Data is the raw response body (empty for a confirmed absence)
	Data []byte `json:"data"`

	// StatusCode is 200 for found data, 404 for a confirmed absence
	StatusCode int `json:"status_code"`

	// Expires is when the cache entry becomes stale
	Expires time.Time `json:"expires"`

	// CachedAt is when we cached this entry
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true if the cache entry has expired.
func (e *CacheEntry) IsExpired() bool {
	return e.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the entry is expired at now.
func (e *CacheEntry) IsExpiredAt(now time.Time) bool {
	return !now.Before(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *CacheEntry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// NotFound reports whether the entry records a confirmed absence upstream.
func (e *CacheEntry) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// clone returns a deep copy so callers never share the stored byte slice.
func (e *CacheEntry) clone() *CacheEntry {
	c := *e
	if e.Data != nil {
		c.Data = append([]byte(nil), e.Data...)
	}
	return &c
}
