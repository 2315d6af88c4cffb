// Package cachemanager is a small typed layer over go-cache.
package cachemanager

import (
	"context"
	"fmt"
	"time"

	"github.com/newhook/tasklog/internal/logging"
	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultExpiration is how long entries live when no TTL is given.
	DefaultExpiration = 5 * time.Minute
	// DefaultCleanupInterval is how often expired entries are purged.
	DefaultCleanupInterval = 10 * time.Minute
)

// CacheManager is a typed key/value cache.
type CacheManager[K comparable, V any] interface {
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Flush(ctx context.Context) error
}

// InMemoryCacheManager implements CacheManager with an in-process go-cache.
type InMemoryCacheManager[K comparable, V any] struct {
	name  string
	cache *gocache.Cache
}

var _ CacheManager[string, string] = (*InMemoryCacheManager[string, string])(nil)

// NewInMemoryCacheManager creates a cache. name only appears in log records.
func NewInMemoryCacheManager[K comparable, V any](name string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		name:  name,
		cache: gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Get returns the entry for key without touching its TTL.
func (m *InMemoryCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zero V
	raw, ok := m.cache.Get(cacheKey(key))
	if !ok {
		return zero, false
	}
	value, ok := raw.(V)
	if !ok {
		logging.Warn("cache entry has unexpected type", "cache", m.name, "key", cacheKey(key), "type", fmt.Sprintf("%T", raw))
		return zero, false
	}
	return value, true
}

// GetWithRefresh returns the entry and resets its TTL.
func (m *InMemoryCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	value, ok := m.Get(ctx, key)
	if ok {
		m.cache.Set(cacheKey(key), value, ttl)
	}
	return value, ok
}

// Set stores value under key for ttl.
func (m *InMemoryCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.cache.Set(cacheKey(key), value, ttl)
}

// Flush drops every entry.
func (m *InMemoryCacheManager[K, V]) Flush(ctx context.Context) error {
	m.cache.Flush()
	return nil
}

// ItemCount returns the number of entries, including expired ones not yet purged.
func (m *InMemoryCacheManager[K, V]) ItemCount() int {
	return m.cache.ItemCount()
}

func cacheKey[K comparable](key K) string {
	if s, ok := any(key).(string); ok {
		return s
	}
	return fmt.Sprint(key)
}
