package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type parsedEntry struct {
	Name  string
	Items []string
}

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	})
}

func TestInMemoryCacheManager_GetExistingValue_StructType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, parsedEntry]("params", DefaultExpiration, DefaultCleanupInterval)
	entry := parsedEntry{Name: "Compile", Items: []string{"a.cs", "b.cs"}}
	cache.Set(context.Background(), "Added Item(s):", entry, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "Added Item(s):")
	require.True(t, ok)
	require.Equal(t, entry, got)
}

func TestInMemoryCacheManager_NonStringKey(t *testing.T) {
	cache := NewInMemoryCacheManager[int, string]("params", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), 42, "Configuration", DefaultExpiration)

	got, ok := cache.Get(context.Background(), 42)
	require.True(t, ok)
	require.Equal(t, "Configuration", got)
}

func TestInMemoryCacheManager_GetMissing(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("params", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "missing")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithInvalidValueType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("params", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("name", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "name")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("params", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.GetWithRefresh(context.Background(), "a", time.Hour)
	require.False(t, ok)
	require.Equal(t, "", got)

	cache.Set(context.Background(), "a", "Sources", 50*time.Millisecond)
	got, ok = cache.GetWithRefresh(context.Background(), "a", time.Hour)
	require.True(t, ok)
	require.Equal(t, "Sources", got)

	time.Sleep(100 * time.Millisecond)
	_, ok = cache.Get(context.Background(), "a")
	require.True(t, ok, "refresh should have extended the TTL")
}

func TestInMemoryCacheManager_Flush(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("params", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)
	require.Equal(t, 2, cache.ItemCount())

	require.NoError(t, cache.Flush(ctx))
	require.Equal(t, 0, cache.ItemCount())
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)
}
