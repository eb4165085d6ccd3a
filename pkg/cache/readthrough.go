package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Loader fetches a value on cache miss. It returns the body and status code
// to cache; Key, CachedAt and Expires are filled in by the cache.
type Loader func(ctx context.Context) (*CacheEntry, error)

// Stats holds read-through counters since construction.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// ReadThrough memoizes loader results in a Store.
//
// Failed loads are never stored. No lock is held while a loader runs, so
// two callers missing the same key may both load; the last Set wins.
type ReadThrough struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewReadThrough creates a read-through cache over store.
func NewReadThrough(store Store, logger zerolog.Logger) *ReadThrough {
	return &ReadThrough{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock replaces the time source used to stamp entries (for testing).
func (c *ReadThrough) SetClock(now func() time.Time) {
	c.now = now
}

// GetOrFetch returns the live entry for key, or calls load and caches its result for ttl.
func (c *ReadThrough) GetOrFetch(ctx context.Context, key CacheKey, ttl time.Duration, load Loader) (*CacheEntry, error) {
	entry, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		c.hits.Add(1)
		c.logger.Debug().Str("key", key.String()).Msg("Cache hit")
		return entry, nil
	case !errors.Is(err, ErrCacheMiss):
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache get error")
	}

	c.misses.Add(1)
	c.logger.Debug().Str("key", key.String()).Msg("Cache miss")

	loaded, err := load(ctx)
	if err != nil {
		CacheErrors.WithLabelValues("load").Inc()
		return nil, err
	}
	if loaded == nil {
		CacheErrors.WithLabelValues("load").Inc()
		return nil, fmt.Errorf("%w: loader returned no entry for %s", ErrInvalidEntry, key)
	}

	now := c.now()
	fresh := loaded.clone()
	fresh.Key = key.String()
	fresh.CachedAt = now
	fresh.Expires = now.Add(ttl)

	if err := c.store.Set(ctx, key, fresh); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache entry")
	} else {
		outcome := "found"
		if fresh.NotFound() {
			outcome = "not_found"
		}
		CacheFills.WithLabelValues(outcome).Inc()
		c.logger.Debug().
			Str("key", key.String()).
			Dur("ttl", ttl).
			Int("status_code", fresh.StatusCode).
			Msg("Cached entry")
	}

	return fresh, nil
}

// Invalidate removes the entry for key.
func (c *ReadThrough) Invalidate(ctx context.Context, key CacheKey) error {
	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	c.logger.Debug().Str("key", key.String()).Msg("Cache entry invalidated")
	return nil
}

// InvalidateAll removes every catalog entry.
func (c *ReadThrough) InvalidateAll(ctx context.Context) error {
	if err := c.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("invalidate all: %w", err)
	}
	c.logger.Info().Msg("Catalog cache cleared")
	return nil
}

// Stats returns hit and miss counters.
func (c *ReadThrough) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
