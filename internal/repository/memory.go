package repository

import (
	"context"
	"sync"
	"time"

	"lendhub/internal/models"
)

// MemorySearchCache is the in-process fallback for the search cache.
type MemorySearchCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

type memoryEntry struct {
	items     []*models.Item
	expiresAt time.Time
}

func NewMemorySearchCache(ttl time.Duration) *MemorySearchCache {
	return &MemorySearchCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (m *MemorySearchCache) Get(ctx context.Context, query string) ([]*models.Item, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[query]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.items, true, nil
}

func (m *MemorySearchCache) Set(ctx context.Context, query string, items []*models.Item) error {
	m.mu.Lock()
	m.entries[query] = memoryEntry{items: items, expiresAt: time.Now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemorySearchCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}
