package api

import (
	"github.com/JaimeStill/clientes/internal/config"
	"github.com/JaimeStill/clientes/internal/infrastructure"
	"github.com/JaimeStill/clientes/pkg/middleware"
)

// Runtime extends Infrastructure with API-specific collaborators.
type Runtime struct {
	*infrastructure.Infrastructure
	Limiter *middleware.RateLimiter
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
			Cache:     infra.Cache,
			Metrics:   infra.Metrics,
		},
		Limiter: middleware.NewRateLimiter(&cfg.API.RateLimit, logger),
	}
}
