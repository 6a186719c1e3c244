package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 30 * time.Second

// Cache keeps recently computed leaderboards in Redis. A nil *Cache is
// valid and caches nothing, so the service works without Redis.
//
// Invalidate only deletes keys this process wrote; entries written by
// other instances age out via the TTL.
type Cache struct {
	rdb  *redis.Client
	mu   sync.Mutex
	keys map[string]bool
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{
		rdb:  rdb,
		keys: make(map[string]bool),
	}
}

func cacheKey(limit int) string {
	return fmt.Sprintf("leaderboard:%d", limit)
}

func (c *Cache) Get(ctx context.Context, limit int) ([]Entry, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	payload, err := c.rdb.Get(ctx, cacheKey(limit)).Result()
	if err != nil {
		return nil, false
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *Cache) Set(ctx context.Context, limit int, entries []Entry) {
	if c == nil || c.rdb == nil {
		return
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}
	key := cacheKey(limit)
	if err := c.rdb.Set(ctx, key, payload, cacheTTL).Err(); err != nil {
		log.Printf("Failed to cache leaderboard: %v", err)
		return
	}
	c.remember(key)
}

// Invalidate drops every cached leaderboard written by this process.
// Called after a match commits so readers never see a stale board past
// the commit.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	keys := c.takeKeys()
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Failed to drop leaderboard cache keys: %v", err)
	}
}

func (c *Cache) remember(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.keys[key] = true
}

// takeKeys empties the tracked key set and returns its contents.
func (c *Cache) takeKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.keys))
	for key := range c.keys {
		keys = append(keys, key)
	}
	clear(c.keys)
	return keys
}
