package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/catalog-client/pkg/favorites"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteStore implements favorites.Store on gorm.
type FavoriteStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ favorites.Store = (*FavoriteStore)(nil)

// NewFavoriteStore creates a store over an opened database.
func NewFavoriteStore(db *gorm.DB) *FavoriteStore {
	return &FavoriteStore{db: db, now: time.Now}
}

// List implements favorites.Store.
func (s *FavoriteStore) List(ctx context.Context, userID int64) ([]favorites.Record, error) {
	var rows []FavoriteProduct
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}

	records := make([]favorites.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, toRecord(row))
	}
	return records, nil
}

// Add implements favorites.Store.
func (s *FavoriteStore) Add(ctx context.Context, userID int64, productID int) (favorites.Record, error) {
	row := FavoriteProduct{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: s.now().UTC(),
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return favorites.Record{}, fmt.Errorf("insert favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return favorites.Record{}, favorites.ErrAlreadyFavorite
	}

	return toRecord(row), nil
}

// Delete implements favorites.Store.
func (s *FavoriteStore) Delete(ctx context.Context, userID int64, productID int) error {
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&FavoriteProduct{}).Error; err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

// Exists implements favorites.Store.
func (s *FavoriteStore) Exists(ctx context.Context, userID int64, productID int) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&FavoriteProduct{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count favorite: %w", err)
	}
	return count > 0, nil
}

func toRecord(row FavoriteProduct) favorites.Record {
	return favorites.Record{
		UserID:    row.UserID,
		ProductID: row.ProductID,
		CreatedAt: row.CreatedAt,
	}
}
