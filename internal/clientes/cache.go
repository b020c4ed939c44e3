package clientes

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/clientes/pkg/cache"
)

type cachedRepository struct {
	Repository
	cache  cache.System
	group  singleflight.Group
	logger *slog.Logger

	// epoch advances on every write. A load that started under an older
	// epoch is not stored.
	mu    sync.Mutex
	epoch uint64
}

// WithCache wraps repo so FindByKey reads through c. Writes invalidate the
// affected key. Returns repo unchanged when c is nil.
func WithCache(repo Repository, c cache.System, logger *slog.Logger) Repository {
	if c == nil {
		return repo
	}
	return &cachedRepository{
		Repository: repo,
		cache:      c,
		logger:     logger.With("system", "clientes-cache"),
	}
}

func (r *cachedRepository) FindByKey(ctx context.Context, key string) (Cliente, error) {
	if c, ok := r.lookup(ctx, key); ok {
		return c, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		epoch := r.currentEpoch()
		c, err := r.Repository.FindByKey(ctx, key)
		if err != nil {
			return Cliente{}, err
		}
		r.store(ctx, c, epoch)
		return c, nil
	})
	if err != nil {
		return Cliente{}, err
	}
	return v.(Cliente), nil
}

// Unwrap returns the uncached repository.
func (r *cachedRepository) Unwrap() Repository {
	return r.Repository
}

func (r *cachedRepository) Create(ctx context.Context, c Cliente) (Cliente, error) {
	defer r.invalidate(ctx, c.Key)
	return r.Repository.Create(ctx, c)
}

func (r *cachedRepository) Update(ctx context.Context, key string, ch Changes) (Cliente, error) {
	defer r.invalidate(ctx, key)
	return r.Repository.Update(ctx, key, ch)
}

func (r *cachedRepository) DeleteByKey(ctx context.Context, key string) (Cliente, error) {
	defer r.invalidate(ctx, key)
	return r.Repository.DeleteByKey(ctx, key)
}

func (r *cachedRepository) lookup(ctx context.Context, key string) (Cliente, bool) {
	b, ok, err := r.cache.Get(ctx, cacheKey(key))
	if err != nil {
		r.logger.Warn("cache read failed", "key", key, "error", err)
		return Cliente{}, false
	}
	if !ok {
		return Cliente{}, false
	}

	var c Cliente
	if err := json.Unmarshal(b, &c); err != nil {
		r.logger.Warn("cache entry corrupt", "key", key, "error", err)
		return Cliente{}, false
	}
	return c, true
}

func (r *cachedRepository) currentEpoch() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epoch
}

func (r *cachedRepository) store(ctx context.Context, c Cliente, epoch uint64) {
	b, err := json.Marshal(c)
	if err != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != epoch {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(c.Key), b, r.cache.TTL()); err != nil {
		r.logger.Warn("cache write failed", "key", c.Key, "error", err)
	}
}

func (r *cachedRepository) invalidate(ctx context.Context, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	r.group.Forget(key)
	if err := r.cache.Delete(ctx, cacheKey(key)); err != nil {
		r.logger.Warn("cache invalidate failed", "key", key, "error", err)
	}
}

func cacheKey(key string) string {
	return "cliente:" + key
}
