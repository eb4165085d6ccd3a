package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps cache entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*CacheEntry),
		now:     time.Now,
	}
}

// SetClock replaces the time source (for testing).
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key CacheKey) (*CacheEntry, error) {
	cacheKey := key.String()

	m.mu.RLock()
	entry, ok := m.entries[cacheKey]
	now := m.now()
	m.mu.RUnlock()

	if !ok {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	if entry.IsExpiredAt(now) {
		m.mu.Lock()
		// Only drop the entry we saw; a concurrent Set may have replaced it.
		if current, ok := m.entries[cacheKey]; ok && current == entry {
			delete(m.entries, cacheKey)
		}
		m.mu.Unlock()
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()
	return entry.clone(), nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.IsExpiredAt(m.now()) {
		// Already expired, don't cache
		return nil
	}

	m.entries[key.String()] = entry.clone()
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, key CacheKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key.String())
	return nil
}

// DeleteAll implements Store.
func (m *MemoryStore) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*CacheEntry)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
