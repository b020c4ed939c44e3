package cache

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/JaimeStill/clientes/pkg/lifecycle"
)

type memory struct {
	c      *gocache.Cache
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewMemory creates a process-local cache. Expired entries are purged every minute.
func NewMemory(prefix string, ttl time.Duration, logger *slog.Logger) System {
	return &memory{
		c:      gocache.New(ttl, time.Minute),
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (m *memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(m.prefix + key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (m *memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.c.Set(m.prefix+key, value, ttl)
	return nil
}

func (m *memory) Delete(_ context.Context, key string) error {
	m.c.Delete(m.prefix + key)
	return nil
}

func (m *memory) TTL() time.Duration {
	return m.ttl
}

func (m *memory) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("starting cache")

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		m.c.Flush()
		m.logger.Info("cache flushed")
	})

	return nil
}
