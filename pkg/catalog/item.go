// Package catalog defines the product snapshot returned by the upstream catalog API.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Item is an immutable snapshot of an upstream product.
type Item struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// Rating is the aggregated customer review score of an item.
type Rating struct {
	// Rate is between 0 and 5.
	Rate float64 `json:"rate"`

	// Count is the number of reviews.
	Count int `json:"count"`
}

// DecodeItem decodes a single item body.
// An empty body, "null" or "{}" decode to nil: the upstream uses them for missing products.
func DecodeItem(data []byte) (*Item, error) {
	if isEmptyBody(data) {
		return nil, nil
	}

	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode catalog item: %w", err)
	}
	if item.ID == 0 && item.Title == "" {
		return nil, nil
	}

	return &item, nil
}

// DecodeItems decodes a listing body. An empty body decodes to an empty slice.
func DecodeItems(data []byte) ([]Item, error) {
	if isEmptyBody(data) {
		return []Item{}, nil
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode catalog listing: %w", err)
	}
	if items == nil {
		items = []Item{}
	}

	return items, nil
}

func isEmptyBody(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
