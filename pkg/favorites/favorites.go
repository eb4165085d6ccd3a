// Package favorites keeps a user's favorite-product records consistent with
// the upstream catalog.
//
// Records whose product the catalog confirms as gone are deleted. Records
// whose product cannot be looked up right now are kept and only left out of
// the current result.
package favorites

import (
	"context"
	"errors"
	"time"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
)

// Common errors returned by the service and stores.
var (
	// ErrProductNotFound is returned when a product could not be confirmed to exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrAlreadyFavorite is returned when the user already marked the product.
	ErrAlreadyFavorite = errors.New("product already in favorites")
)

// Record is a persisted (user, product) favorite.
type Record struct {
	UserID    int64     `json:"user_id"`
	ProductID int       `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Enriched is a record together with its current catalog snapshot.
type Enriched struct {
	Record
	Product catalog.Item `json:"product"`
}

// Store persists favorite records.
type Store interface {
	// List returns the user's records, oldest first.
	List(ctx context.Context, userID int64) ([]Record, error)

	// Add creates a record. It returns ErrAlreadyFavorite on a duplicate.
	Add(ctx context.Context, userID int64, productID int) (Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, userID int64, productID int) error

	// Exists reports whether the record is present.
	Exists(ctx context.Context, userID int64, productID int) (bool, error)
}

// Catalog is the part of the catalog client the guard depends on.
type Catalog interface {
	// GetByID returns nil without error when the product is confirmed absent.
	GetByID(ctx context.Context, id int) (*catalog.Item, error)

	// Exists reports whether the product is confirmed to exist. Failures yield false.
	Exists(ctx context.Context, id int) bool
}
