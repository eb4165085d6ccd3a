// Package client provides the catalog HTTP client with rate limiting,
// read-through caching, and retries.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Sternrassler/catalog-client/pkg/batch"
	"github.com/Sternrassler/catalog-client/pkg/cache"
	"github.com/Sternrassler/catalog-client/pkg/catalog"
	"github.com/Sternrassler/catalog-client/pkg/ratelimit"
	"github.com/rs/zerolog"
)

// Client is the main catalog client.
type Client struct {
	fetcher *Fetcher
	limiter ratelimit.Limiter
	cache   *cache.ReadThrough
	config  Config
	logger  zerolog.Logger
}

// Stats is a read-only snapshot of the client configuration and budget.
type Stats struct {
	BaseURL                     string `json:"base_url"`
	RateLimitRemaining          int    `json:"rate_limit_remaining"`
	RateLimitMax                int    `json:"rate_limit_max"`
	RateLimitWindowSeconds      int    `json:"rate_limit_window_seconds"`
	RateLimitAvailableInSeconds int    `json:"rate_limit_available_in_seconds"`
	CacheTTLSeconds             int    `json:"cache_ttl_seconds"`
	TimeoutSeconds              int    `json:"timeout_seconds"`
	MaxRetries                  int    `json:"max_retries"`
	CacheHits                   int64  `json:"cache_hits"`
	CacheMisses                 int64  `json:"cache_misses"`
}

// WarmupReport summarizes a Warmup run.
type WarmupReport struct {
	Requested int
	Found     int
	NotFound  int
	Failed    int
}

// New creates a new catalog client.
//
// A nil limiter or store falls back to the in-memory implementation.
func New(cfg Config, limiter ratelimit.Limiter, store cache.Store, logger zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	if cfg.RateLimitKey == "" {
		cfg.RateLimitKey = ratelimit.DefaultKey
	}

	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter()
	}
	if store == nil {
		store = cache.NewMemoryStore()
	}

	logger = logger.With().Str("component", "catalog-client").Logger()

	return &Client{
		fetcher: NewFetcher(cfg, limiter, logger),
		limiter: limiter,
		cache:   cache.NewReadThrough(store, logger),
		config:  cfg,
		logger:  logger,
	}, nil
}

// ListAll returns the full catalog listing.
// A 404 on the listing is treated as an empty catalog.
func (c *Client) ListAll(ctx context.Context) ([]catalog.Item, error) {
	entry, err := c.cache.GetOrFetch(ctx, cache.AllItemsKey(), c.config.CacheTTL, c.loader("/products"))
	if err != nil {
		return nil, err
	}

	if entry.NotFound() {
		return []catalog.Item{}, nil
	}

	return catalog.DecodeItems(entry.Data)
}

// GetByID returns the item with the given id, or nil when the upstream
// confirms it does not exist.
func (c *Client) GetByID(ctx context.Context, id int) (*catalog.Item, error) {
	endpoint := "/products/" + strconv.Itoa(id)

	entry, err := c.cache.GetOrFetch(ctx, cache.ItemKey(id), c.config.CacheTTL, c.loader(endpoint))
	if err != nil {
		return nil, err
	}

	if entry.NotFound() {
		return nil, nil
	}

	item, err := catalog.DecodeItem(entry.Data)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", id, err)
	}
	return item, nil
}

// Exists reports whether the product is confirmed to exist.
// Any failure to confirm yields false.
func (c *Client) Exists(ctx context.Context, id int) bool {
	item, err := c.GetByID(ctx, id)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Int("product_id", id).
			Msg("Could not confirm product existence")
		return false
	}
	return item != nil
}

// Stats returns the current configuration and rate limit budget. It makes no
// upstream requests and consumes no budget.
func (c *Client) Stats(ctx context.Context) Stats {
	attempts := c.limiter.Attempts(ctx, c.config.RateLimitKey)
	cacheStats := c.cache.Stats()

	return Stats{
		BaseURL:                     c.config.BaseURL,
		RateLimitRemaining:          ratelimit.Remaining(c.config.RateLimitMax, attempts),
		RateLimitMax:                c.config.RateLimitMax,
		RateLimitWindowSeconds:      ratelimit.Seconds(c.config.RateLimitWindow),
		RateLimitAvailableInSeconds: ratelimit.Seconds(c.limiter.AvailableIn(ctx, c.config.RateLimitKey)),
		CacheTTLSeconds:             ratelimit.Seconds(c.config.CacheTTL),
		TimeoutSeconds:              ratelimit.Seconds(c.config.Timeout),
		MaxRetries:                  c.config.MaxRetries,
		CacheHits:                   cacheStats.Hits,
		CacheMisses:                 cacheStats.Misses,
	}
}

// ClearCache drops the cached listing. Cached items stay until they expire.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.cache.Invalidate(ctx, cache.AllItemsKey())
}

// Invalidate drops the cached entry of a single item.
func (c *Client) Invalidate(ctx context.Context, id int) error {
	return c.cache.Invalidate(ctx, cache.ItemKey(id))
}

// InvalidateAll drops every cached catalog entry.
func (c *Client) InvalidateAll(ctx context.Context) error {
	return c.cache.InvalidateAll(ctx)
}

// Warmup loads the given items into the cache with a bounded worker pool.
func (c *Client) Warmup(ctx context.Context, ids []int) WarmupReport {
	results := batch.Map(ctx, batch.DefaultConfig(), ids, func(ctx context.Context, id int) (*catalog.Item, error) {
		return c.GetByID(ctx, id)
	})

	report := WarmupReport{Requested: len(ids)}
	for _, r := range results {
		switch {
		case r.Err != nil:
			report.Failed++
			c.logger.Warn().Err(r.Err).Int("product_id", ids[r.Index]).Msg("Warmup fetch failed")
		case r.Value == nil:
			report.NotFound++
		default:
			report.Found++
		}
	}

	c.logger.Info().
		Int("requested", report.Requested).
		Int("found", report.Found).
		Int("not_found", report.NotFound).
		Int("failed", report.Failed).
		Msg("Cache warmup complete")

	return report
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.fetcher.SetHTTPClient(client)
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}

// loader adapts a fetch of endpoint to the cache loader signature.
func (c *Client) loader(endpoint string) cache.Loader {
	return func(ctx context.Context) (*cache.CacheEntry, error) {
		result, err := c.fetcher.Fetch(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		switch result.Outcome {
		case OutcomeNotFound:
			return &cache.CacheEntry{StatusCode: http.StatusNotFound}, nil
		case OutcomeFound:
			return &cache.CacheEntry{Data: result.Body, StatusCode: result.StatusCode}, nil
		default:
			return nil, errors.New("fetch returned no outcome")
		}
	}
}
