package favorites

import (
	"context"

	"github.com/Sternrassler/catalog-client/pkg/batch"
	"github.com/Sternrassler/catalog-client/pkg/catalog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for favorites reconciliation.
var (
	// FavoritesPruned counts records deleted because their product is gone
	FavoritesPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_favorites_pruned_total",
		Help: "Total number of favorite records deleted because the product no longer exists",
	})

	// FavoritesDeferred counts records left out of a result because the lookup failed
	FavoritesDeferred = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_favorites_deferred_total",
		Help: "Total number of favorite records skipped because the product lookup failed",
	})
)

// Guard reconciles favorite records against the catalog.
type Guard struct {
	catalog Catalog
	store   Store
	batch   batch.Config
	logger  zerolog.Logger
}

// NewGuard creates a guard that looks up at most five products concurrently.
func NewGuard(c Catalog, store Store, logger zerolog.Logger) *Guard {
	return &Guard{
		catalog: c,
		store:   store,
		batch:   batch.DefaultConfig(),
		logger:  logger.With().Str("component", "favorites-guard").Logger(),
	}
}

// SetConcurrency changes how many lookups run in parallel.
func (g *Guard) SetConcurrency(n int) {
	g.batch.MaxConcurrency = n
}

// FilterAndEnrich returns the records whose product exists, in input order,
// each with its catalog snapshot.
//
// Records whose product is confirmed absent are deleted from the store.
// Records whose lookup fails are kept in the store but left out of the result.
func (g *Guard) FilterAndEnrich(ctx context.Context, records []Record) []Enriched {
	results := batch.Map(ctx, g.batch, records, func(ctx context.Context, r Record) (*catalog.Item, error) {
		return g.catalog.GetByID(ctx, r.ProductID)
	})

	enriched := make([]Enriched, 0, len(records))
	for _, res := range results {
		record := records[res.Index]

		switch {
		case res.Err != nil:
			FavoritesDeferred.Inc()
			g.logger.Warn().
				Err(res.Err).
				Int64("user_id", record.UserID).
				Int("product_id", record.ProductID).
				Msg("Product lookup failed, keeping favorite")

		case res.Value == nil:
			FavoritesPruned.Inc()
			if err := g.store.Delete(ctx, record.UserID, record.ProductID); err != nil {
				g.logger.Error().
					Err(err).
					Int64("user_id", record.UserID).
					Int("product_id", record.ProductID).
					Msg("Failed to delete stale favorite")
				continue
			}
			g.logger.Info().
				Int64("user_id", record.UserID).
				Int("product_id", record.ProductID).
				Msg("Removed favorite for missing product")

		default:
			enriched = append(enriched, Enriched{Record: record, Product: *res.Value})
		}
	}

	return enriched
}

// ValidateBeforeAdd reports whether the product is confirmed to exist.
func (g *Guard) ValidateBeforeAdd(ctx context.Context, productID int) bool {
	return g.catalog.Exists(ctx, productID)
}
