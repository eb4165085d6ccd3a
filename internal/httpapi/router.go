// Package httpapi exposes the catalog client and the favorites service over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
	"github.com/Sternrassler/catalog-client/pkg/client"
	"github.com/Sternrassler/catalog-client/pkg/favorites"
	"github.com/Sternrassler/catalog-client/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Catalog is the catalog client surface served by the API.
type Catalog interface {
	ListAll(ctx context.Context) ([]catalog.Item, error)
	GetByID(ctx context.Context, id int) (*catalog.Item, error)
	Stats(ctx context.Context) client.Stats
	InvalidateAll(ctx context.Context) error
}

// Favorites is the favorites service surface served by the API.
type Favorites interface {
	ListFavorites(ctx context.Context, userID int64) ([]favorites.Enriched, error)
	AddFavorite(ctx context.Context, userID int64, productID int) (favorites.Record, error)
}

// Deps holds the collaborators of the router.
type Deps struct {
	Catalog   Catalog
	Favorites Favorites

	// Ready reports whether shared backends are reachable. Nil means always ready.
	Ready func(ctx context.Context) error

	Logger zerolog.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(deps Deps) http.Handler {
	s := &server{
		catalog:   deps.Catalog,
		favorites: deps.Favorites,
		ready:     deps.Ready,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(deps.Logger.With().Str("component", "http").Logger()))
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/health", s.health)
	r.Get("/ready", s.readiness)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.listProducts)
		r.Get("/{id}", s.getProduct)
	})

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/stats", s.stats)
		r.Delete("/cache", s.clearCache)
	})

	r.Route("/users/{user}/favorites", func(r chi.Router) {
		r.Get("/", s.listFavorites)
		r.Post("/", s.addFavorite)
	})

	return r
}

type server struct {
	catalog   Catalog
	favorites Favorites
	ready     func(ctx context.Context) error
}
