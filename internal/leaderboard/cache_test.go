package leaderboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeyTracking(t *testing.T) {
	cache := NewCache(nil)
	cache.remember(cacheKey(0))
	cache.remember(cacheKey(10))
	cache.remember(cacheKey(10))

	keys := cache.takeKeys()
	assert.ElementsMatch(t, []string{"leaderboard:0", "leaderboard:10"}, keys)

	// Taking the keys empties the set.
	assert.Empty(t, cache.takeKeys())
}

func TestNilCacheIsInert(t *testing.T) {
	var cache *Cache

	cache.Set(context.Background(), 0, []Entry{})
	_, ok := cache.Get(context.Background(), 0)
	assert.False(t, ok)
	cache.Invalidate(context.Background())
}
