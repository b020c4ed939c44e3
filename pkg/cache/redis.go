package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/JaimeStill/clientes/pkg/lifecycle"
)

type redis struct {
	client *rdb.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis creates a Redis-backed cache. No connection is made until first use.
func NewRedis(cfg *Config, logger *slog.Logger) System {
	client := rdb.NewClient(&rdb.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &redis{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTLDuration(),
		logger: logger,
	}
}

func (r *redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, rdb.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (r *redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *redis) TTL() time.Duration {
	return r.ttl
}

func (r *redis) Start(lc *lifecycle.Coordinator) error {
	r.logger.Info("starting cache")

	lc.AddCheck("cache", func(ctx context.Context) error {
		return r.client.Ping(ctx).Err()
	})

	lc.OnStartup(func() {
		if err := r.client.Ping(lc.Context()).Err(); err != nil {
			r.logger.Error("cache ping failed", "error", err)
			return
		}
		r.logger.Info("cache connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := r.client.Close(); err != nil {
			r.logger.Error("cache close failed", "error", err)
			return
		}
		r.logger.Info("cache connection closed")
	})

	return nil
}
