// Package cache provides the read-through cache in front of the upstream catalog.
//
// The cache memoizes successful upstream outcomes under deterministic keys
// with a fixed time-to-live:
//
// - Found responses (2xx) and confirmed absences (404) are cached
// - Failures are never cached, so the next call retries upstream
// - Entries are replaced whole; a racing write never mixes old and new data
// - Two stores: in-process memory and Redis (shared by several instances)
//
// # Basic Usage
//
//	// Create a store and the read-through cache
//	store := cache.NewMemoryStore()
//	rt := cache.NewReadThrough(store, logger)
//
//	// Load through the cache
//	entry, err := rt.GetOrFetch(ctx, cache.ItemKey(42), time.Hour,
//		func(ctx context.Context) (*cache.CacheEntry, error) {
//			// Fetch from upstream
//			return &cache.CacheEntry{Data: body, StatusCode: http.StatusOK}, nil
//		})
//
// # Keys
//
//	cache.AllItemsKey().String() // "catalog:all"
//	cache.ItemKey(42).String()   // "catalog:item:42"
//
// # Redis
//
//	store := cache.NewRedisStore(redisClient)
//
// Entries are stored as JSON with a Redis TTL equal to the entry TTL, so
// expired data disappears without a sweeper.
//
// # Metrics
//
// The cache exports Prometheus metrics:
//
//   - catalog_cache_hits_total{layer} - Cache hits by store ("memory", "redis")
//   - catalog_cache_misses_total - Cache misses
//   - catalog_cache_fills_total{outcome} - Entries written after a load ("found", "not_found")
//   - catalog_cache_errors_total{operation} - Store operation errors
package cache
