// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, database, storage, cache, metrics)
// that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/clientes/internal/config"
	"github.com/JaimeStill/clientes/pkg/cache"
	"github.com/JaimeStill/clientes/pkg/database"
	"github.com/JaimeStill/clientes/pkg/lifecycle"
	"github.com/JaimeStill/clientes/pkg/metrics"
	"github.com/JaimeStill/clientes/pkg/storage"
)

// MetricsNamespace prefixes every exported Prometheus series.
const MetricsNamespace = "clientes"

// Infrastructure holds the core systems required by all domain modules.
// Cache is nil when the cache driver is "none".
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Cache     cache.System
	Metrics   *metrics.Metrics
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// NewWithLogger is New with a caller-supplied logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	lc := lifecycle.New()

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	c, err := cache.New(&cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("cache init failed: %w", err)
	}

	m := metrics.New(MetricsNamespace)
	if err := m.RegisterDB(db.Connection(), MetricsNamespace); err != nil {
		return nil, fmt.Errorf("metrics init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Cache:     c,
		Metrics:   m,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if i.Cache != nil {
		if err := i.Cache.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("cache start failed: %w", err)
		}
	}
	return nil
}
