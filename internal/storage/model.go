package storage

import "time"

// FavoriteProduct is the row of a user's favorite product.
type FavoriteProduct struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_favorite_user_product"`
	ProductID int       `gorm:"column:product_id;not null;uniqueIndex:idx_favorite_user_product"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (FavoriteProduct) TableName() string {
	return "favorite_products"
}
