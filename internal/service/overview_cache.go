package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OverviewCache guarda snapshots de overview con vigencia acotada. Una
// entrada vencida o un miss se reportan igual: (zero, false, nil).
type OverviewCache interface {
	Get(userID, window string) (PerformanceOverview, bool, error)
	Set(userID, window string, overview PerformanceOverview, ttl time.Duration) error
}

type cachedOverview struct {
	value     PerformanceOverview
	expiresAt time.Time
}

type memoryOverviewCache struct {
	mu    sync.Mutex
	items map[string]cachedOverview
}

func NewMemoryOverviewCache() OverviewCache {
	return &memoryOverviewCache{
		items: make(map[string]cachedOverview),
	}
}

func overviewCacheKey(userID, window string) string {
	return userID + ":" + window
}

func (c *memoryOverviewCache) Get(userID, window string) (PerformanceOverview, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.items[overviewCacheKey(userID, window)]
	if !ok {
		return PerformanceOverview{}, false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(c.items, overviewCacheKey(userID, window))
		return PerformanceOverview{}, false, nil
	}
	return entry.value, true, nil
}

func (c *memoryOverviewCache) Set(userID, window string, overview PerformanceOverview, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[overviewCacheKey(userID, window)] = cachedOverview{
		value:     overview,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

// redisKVClient es el subconjunto del cliente redis que usa el cache.
type redisKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type redisOverviewCache struct {
	client redisKVClient
	prefix string
}

func NewRedisOverviewCache(client *redis.Client) OverviewCache {
	if client == nil {
		return nil
	}
	return &redisOverviewCache{
		client: client,
		prefix: "analytics:overview:",
	}
}

func (c *redisOverviewCache) Get(userID, window string) (PerformanceOverview, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	raw, err := c.client.Get(ctx, c.prefix+overviewCacheKey(userID, window)).Result()
	if errors.Is(err, redis.Nil) {
		return PerformanceOverview{}, false, nil
	}
	if err != nil {
		return PerformanceOverview{}, false, err
	}

	var overview PerformanceOverview
	if err := json.Unmarshal([]byte(raw), &overview); err != nil {
		// Snapshot corrupto: se trata como miss para que se regenere.
		return PerformanceOverview{}, false, nil
	}
	return overview, true, nil
}

func (c *redisOverviewCache) Set(userID, window string, overview PerformanceOverview, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}

	payload, err := json.Marshal(overview)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return c.client.Set(ctx, c.prefix+overviewCacheKey(userID, window), payload, ttl).Err()
}
