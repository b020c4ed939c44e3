// Package cache provides a byte-oriented key/value cache with in-memory and
// Redis backends.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/clientes/pkg/lifecycle"
)

// Cache stores opaque values under string keys with a per-entry TTL.
// A miss is reported as ok == false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// System is a Cache participating in the application lifecycle.
type System interface {
	Cache
	// TTL returns the configured default entry lifetime.
	TTL() time.Duration
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// New creates the cache system selected by cfg.Driver.
// Returns nil when the driver is DriverNone.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "cache", "driver", cfg.Driver)

	switch cfg.Driver {
	case DriverNone:
		return nil, nil
	case DriverMemory:
		return NewMemory(cfg.Prefix, cfg.TTLDuration(), logger), nil
	case DriverRedis:
		return NewRedis(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache driver: %s", cfg.Driver)
	}
}
