// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/clientes/internal/config"
	"github.com/JaimeStill/clientes/internal/infrastructure"
	"github.com/JaimeStill/clientes/pkg/middleware"
	"github.com/JaimeStill/clientes/pkg/module"
	"github.com/JaimeStill/clientes/pkg/openapi"
)

// SpecPath is where the module serves its OpenAPI document.
const SpecPath = "/openapi.json"

// NewModule creates the API module with all domain handlers and middleware.
// Domain routes require a bearer token when auth is enabled; the OpenAPI
// document is always public.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	protected := http.NewServeMux()
	groups := registerRoutes(protected, domain, cfg)

	spec, err := NewSpec(cfg, groups...)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+SpecPath, openapi.ServeSpec(spec))
	mux.Handle("/", middleware.Auth(&cfg.API.Auth, runtime.Logger)(protected))

	runtime.Limiter.StartJanitor(runtime.Lifecycle.Context())

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(runtime.Metrics.Middleware())
	m.Use(runtime.Limiter.Middleware())

	return m, nil
}
