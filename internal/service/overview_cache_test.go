package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisKVClient struct {
	lastSetKey string
	lastSetTTL time.Duration
	stored     map[string]string
	getErr     error
	setErr     error
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	if m.stored == nil {
		m.stored = map[string]string{}
	}
	switch v := value.(type) {
	case []byte:
		m.stored[key] = string(v)
	case string:
		m.stored[key] = v
	}
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKVClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	value, ok := m.stored[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(value)
	return cmd
}

func TestMemoryOverviewCache_Basics(t *testing.T) {
	cache := NewMemoryOverviewCache()

	_, hit, err := cache.Get("user-1", "w1")
	if err != nil || hit {
		t.Fatalf("expected clean miss, got %v,%v", hit, err)
	}

	overview := PerformanceOverview{UserID: "user-1", TimeWindow: "w1"}
	if err := cache.Set("user-1", "w1", overview, 50*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, hit, err := cache.Get("user-1", "w1")
	if err != nil || !hit {
		t.Fatalf("expected hit, got %v,%v", hit, err)
	}
	if got.UserID != "user-1" || got.TimeWindow != "w1" {
		t.Fatalf("unexpected cached value %+v", got)
	}

	time.Sleep(70 * time.Millisecond)
	_, hit, err = cache.Get("user-1", "w1")
	if err != nil || hit {
		t.Fatalf("expected expiry miss, got %v,%v", hit, err)
	}
}

func TestMemoryOverviewCache_KeysAreScoped(t *testing.T) {
	cache := NewMemoryOverviewCache()

	if err := cache.Set("user-1", "w1", PerformanceOverview{UserID: "user-1"}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if _, hit, _ := cache.Get("user-2", "w1"); hit {
		t.Fatalf("cache must not leak across users")
	}
	if _, hit, _ := cache.Get("user-1", "w2"); hit {
		t.Fatalf("cache must not leak across windows")
	}
}

func TestRedisOverviewCache_RoundTrip(t *testing.T) {
	mock := &mockRedisKVClient{}
	cache := &redisOverviewCache{client: mock, prefix: "analytics:overview:"}

	overview := PerformanceOverview{UserID: "user-1", TimeWindow: "2026-08-01_2026-08-29"}
	if err := cache.Set("user-1", "2026-08-01_2026-08-29", overview, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !strings.HasPrefix(mock.lastSetKey, "analytics:overview:user-1:") {
		t.Fatalf("unexpected key %q", mock.lastSetKey)
	}
	if mock.lastSetTTL != time.Minute {
		t.Fatalf("unexpected ttl %v", mock.lastSetTTL)
	}

	got, hit, err := cache.Get("user-1", "2026-08-01_2026-08-29")
	if err != nil || !hit {
		t.Fatalf("expected hit, got %v,%v", hit, err)
	}
	if got.UserID != "user-1" {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestRedisOverviewCache_MissAndCorrupt(t *testing.T) {
	mock := &mockRedisKVClient{}
	cache := &redisOverviewCache{client: mock, prefix: "analytics:overview:"}

	if _, hit, err := cache.Get("user-1", "w1"); err != nil || hit {
		t.Fatalf("redis.Nil must be a clean miss, got %v,%v", hit, err)
	}

	// Un snapshot corrupto se trata como miss, no como error.
	mock.stored = map[string]string{"analytics:overview:user-1:w1": "{corrupt"}
	if _, hit, err := cache.Get("user-1", "w1"); err != nil || hit {
		t.Fatalf("corrupt snapshot must be a miss, got %v,%v", hit, err)
	}
}
