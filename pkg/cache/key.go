package cache

import (
	"strconv"
	"strings"
)

// KeyPrefix namespaces every catalog cache key.
const KeyPrefix = "catalog"

// Scopes of catalog cache keys.
const (
	ScopeAll  = "all"
	ScopeItem = "item"
)

// CacheKey represents a unique identifier for a cached catalog response.
type CacheKey struct {
	// Scope is the resource kind ("all" or "item")
	Scope string

	// ID is the resource identifier (empty for the full listing)
	ID string
}

// AllItemsKey returns the key of the full catalog listing.
func AllItemsKey() CacheKey {
	return CacheKey{Scope: ScopeAll}
}

// ItemKey returns the key of a single catalog item.
func ItemKey(id int) CacheKey {
	return CacheKey{Scope: ScopeItem, ID: strconv.Itoa(id)}
}

// String generates a deterministic cache key string.
// Format: catalog:scope[:id]
//
// Example:
//
//	catalog:item:42
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	if scope := strings.Trim(k.Scope, ":"); scope != "" {
		parts = append(parts, scope)
	}

	if id := strings.TrimSpace(k.ID); id != "" {
		parts = append(parts, id)
	}

	return strings.Join(parts, ":")
}
