package cache_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/clientes/pkg/cache"
	"github.com/JaimeStill/clientes/pkg/lifecycle"
)

func exercise(t *testing.T, c cache.Cache) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "123")
	require.NoError(t, err)
	assert.False(t, ok, "miss expected before Set")

	require.NoError(t, c.Set(ctx, "123", []byte(`{"key":"123"}`), time.Minute))

	got, ok, err := c.Get(ctx, "123")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"key":"123"}`, string(got))

	require.NoError(t, c.Delete(ctx, "123"))

	_, ok, err = c.Get(ctx, "123")
	require.NoError(t, err)
	assert.False(t, ok, "miss expected after Delete")
}

func TestMemoryCache(t *testing.T) {
	exercise(t, cache.NewMemory("test:", time.Minute, slog.Default()))
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &cache.Config{Driver: cache.DriverRedis, RedisAddr: mr.Addr(), Prefix: "test:", TTL: "1m"}
	c := cache.NewRedis(cfg, slog.Default())

	exercise(t, c)
}

func TestRedisCacheAppliesPrefixAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &cache.Config{Driver: cache.DriverRedis, RedisAddr: mr.Addr(), Prefix: "test:", TTL: "1m"}
	c := cache.NewRedis(cfg, slog.Default())

	require.NoError(t, c.Set(context.Background(), "42", []byte("v"), 30*time.Second))

	assert.True(t, mr.Exists("test:42"))
	assert.Equal(t, 30*time.Second, mr.TTL("test:42"))

	mr.FastForward(31 * time.Second)

	_, ok, err := c.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheSurfacesConnectionErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &cache.Config{Driver: cache.DriverRedis, RedisAddr: mr.Addr(), TTL: "1m"}
	c := cache.NewRedis(cfg, slog.Default())
	mr.Close()

	_, _, err := c.Get(context.Background(), "42")
	assert.Error(t, err)
}

func TestNewSelectsDriver(t *testing.T) {
	none, err := cache.New(&cache.Config{Driver: cache.DriverNone}, slog.Default())
	require.NoError(t, err)
	assert.Nil(t, none)

	mem, err := cache.New(&cache.Config{Driver: cache.DriverMemory, TTL: "1m"}, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mem.TTL())

	_, err = cache.New(&cache.Config{Driver: "memcached"}, slog.Default())
	assert.Error(t, err)
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := cache.Config{}
		require.NoError(t, cfg.Finalize(nil))

		assert.Equal(t, cache.DriverMemory, cfg.Driver)
		assert.Equal(t, 5*time.Minute, cfg.TTLDuration())
		assert.True(t, cfg.Enabled())
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_CACHE_DRIVER", "redis")
		t.Setenv("TEST_CACHE_DB", "3")

		cfg := cache.Config{}
		require.NoError(t, cfg.Finalize(&cache.Env{Driver: "TEST_CACHE_DRIVER", RedisDB: "TEST_CACHE_DB"}))

		assert.Equal(t, cache.DriverRedis, cfg.Driver)
		assert.Equal(t, 3, cfg.RedisDB)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := cache.Config{Driver: "memcached"}
		err := cfg.Finalize(nil)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "unknown driver"))
	})

	t.Run("none disables", func(t *testing.T) {
		cfg := cache.Config{Driver: cache.DriverNone}
		require.NoError(t, cfg.Finalize(nil))
		assert.False(t, cfg.Enabled())
	})
}

func TestRedisStartRegistersHealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &cache.Config{Driver: cache.DriverRedis, RedisAddr: mr.Addr(), TTL: "1m"}
	c := cache.NewRedis(cfg, slog.Default())

	lc := lifecycle.New()
	require.NoError(t, c.Start(lc))
	lc.WaitForStartup()

	report := lc.Health(context.Background(), time.Second)
	assert.True(t, report.Healthy)
	assert.Equal(t, "ok", report.Checks["cache"])

	mr.Close()
	report = lc.Health(context.Background(), time.Second)
	assert.False(t, report.Healthy)

	require.NoError(t, lc.Shutdown(time.Second))
}
