package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/cache"
	"github.com/zaeom/storefront-bfa-go/internal/port"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var _ port.Cache[*domain.SiteSettings] = (*cache.InMemory[*domain.SiteSettings])(nil)
var _ port.Cache[[]domain.Category] = (*cache.Redis[[]domain.Category])(nil)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[*domain.SiteSettings](5 * time.Minute)
	defer c.Close()

	c.Set("settings", &domain.SiteSettings{ID: domain.SiteSettingsID, SiteName: "Zaeom"})
	val, ok := c.Get("settings")
	require.True(t, ok, "expected key to exist")
	assert.Equal(t, "Zaeom", val.SiteName)
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	_, ok := c.Get("nonexistent")
	assert.False(t, ok, "expected cache miss for nonexistent key")
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	assert.False(t, ok, "expected cache entry to be expired")
}

func TestCache_JanitorEvicts(t *testing.T) {
	c := cache.New[string](20 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	assert.False(t, ok, "expected key to be deleted")
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := cache.New[string](time.Minute)
	c.Close()
	assert.NotPanics(t, c.Close)
}

func TestRedis_UnreachableServerIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := cache.NewRedis[[]domain.Category](client, "test:", time.Minute, zap.NewNop())
	c.Set("categories", []domain.Category{{ID: "c-1"}})

	_, ok := c.Get("categories")
	assert.False(t, ok, "backend errors read as misses")
	assert.NotPanics(t, func() { c.Delete("categories") })
}

func TestNewRedisClient_RejectsEmptyURL(t *testing.T) {
	_, err := cache.NewRedisClient(context.Background(), "")
	assert.Error(t, err)

	_, err = cache.NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
