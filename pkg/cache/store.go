package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store persists cache entries. Implementations must be safe for concurrent use
// and must replace entries whole on Set.
type Store interface {
	// Get returns a live entry or ErrCacheMiss.
	Get(ctx context.Context, key CacheKey) (*CacheEntry, error)

	// Set stores entry under key until entry.Expires.
	Set(ctx context.Context, key CacheKey, entry *CacheEntry) error

	// Delete removes the entry under key. Missing keys are not an error.
	Delete(ctx context.Context, key CacheKey) error

	// DeleteAll removes every catalog entry.
	DeleteAll(ctx context.Context) error
}
