package favorites

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Service exposes the favorites operations used by the HTTP layer.
type Service struct {
	guard  *Guard
	store  Store
	logger zerolog.Logger
}

// NewService creates a favorites service.
func NewService(guard *Guard, store Store, logger zerolog.Logger) *Service {
	return &Service{
		guard:  guard,
		store:  store,
		logger: logger.With().Str("component", "favorites").Logger(),
	}
}

// ListFavorites returns the user's favorites whose product currently exists.
func (s *Service) ListFavorites(ctx context.Context, userID int64) ([]Enriched, error) {
	records, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites for user %d: %w", userID, err)
	}
	return s.guard.FilterAndEnrich(ctx, records), nil
}

// AddFavorite stores a favorite after confirming the product exists.
//
// It returns ErrProductNotFound when the product cannot be confirmed, which
// includes upstream failures, and ErrAlreadyFavorite on a duplicate.
func (s *Service) AddFavorite(ctx context.Context, userID int64, productID int) (Record, error) {
	exists, err := s.store.Exists(ctx, userID, productID)
	if err != nil {
		return Record{}, fmt.Errorf("check favorite: %w", err)
	}
	if exists {
		return Record{}, ErrAlreadyFavorite
	}

	if !s.guard.ValidateBeforeAdd(ctx, productID) {
		s.logger.Info().
			Int64("user_id", userID).
			Int("product_id", productID).
			Msg("Rejected favorite for unconfirmed product")
		return Record{}, ErrProductNotFound
	}

	record, err := s.store.Add(ctx, userID, productID)
	if err != nil {
		return Record{}, err
	}

	s.logger.Info().
		Int64("user_id", userID).
		Int("product_id", productID).
		Msg("Favorite added")
	return record, nil
}
