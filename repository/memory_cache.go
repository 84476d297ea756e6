package repository

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryCacheEntries bounds the in-memory cache when no size is given.
const DefaultMemoryCacheEntries = 10000

// MemoryCache is a process-local CacheRepository holding at most a fixed
// number of entries; the least recently used entry is evicted first.
type MemoryCache struct {
	entries *lru.Cache[string, string]
}

func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithSize(DefaultMemoryCacheEntries)
}

// NewMemoryCacheWithSize creates a cache for size entries; size <= 0 selects
// DefaultMemoryCacheEntries.
func NewMemoryCacheWithSize(size int) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryCacheEntries
	}
	// lru.New only fails for a non-positive size.
	entries, _ := lru.New[string, string](size)
	return &MemoryCache{entries: entries}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	return m.entries.Get(key)
}

func (m *MemoryCache) Set(_ context.Context, key string, value string) error {
	m.entries.Add(key, value)
	return nil
}

// Len reports the number of cached entries.
func (m *MemoryCache) Len() int {
	return m.entries.Len()
}
