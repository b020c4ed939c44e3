package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/clientes/internal/config"
	"github.com/JaimeStill/clientes/pkg/openapi"
	"github.com/JaimeStill/clientes/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) []routes.Group {
	groups := []routes.Group{
		domain.Clientes.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	}
	routes.Register(mux, groups...)
	return groups
}

// NewSpec documents groups under the configured base path.
func NewSpec(cfg *config.Config, groups ...routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	if cfg.API.Auth.Enabled {
		spec.RequireBearer()
	}
	routes.Describe(spec, cfg.API.BasePath, groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}
