package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/clientes/pkg/formatting"
	"github.com/JaimeStill/clientes/pkg/middleware"
	"github.com/JaimeStill/clientes/pkg/openapi"
)

const defaultMaxUploadSize = 10 * 1024 * 1024

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CLIENTES_CORS_ENABLED",
	Origins:          "CLIENTES_CORS_ORIGINS",
	AllowedMethods:   "CLIENTES_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CLIENTES_CORS_ALLOWED_HEADERS",
	AllowCredentials: "CLIENTES_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CLIENTES_CORS_MAX_AGE",
}

var authEnv = &middleware.AuthEnv{
	Enabled:  "CLIENTES_AUTH_ENABLED",
	Secret:   "CLIENTES_AUTH_SECRET",
	Issuer:   "CLIENTES_AUTH_ISSUER",
	Audience: "CLIENTES_AUTH_AUDIENCE",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled: "CLIENTES_RATE_LIMIT_ENABLED",
	RPS:     "CLIENTES_RATE_LIMIT_RPS",
	Burst:   "CLIENTES_RATE_LIMIT_BURST",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "CLIENTES_OPENAPI_TITLE",
	Description: "CLIENTES_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, upload, middleware, and OpenAPI settings.
type APIConfig struct {
	BasePath      string                     `toml:"base_path"`
	MaxUploadSize string                     `toml:"max_upload_size"`
	CORS          middleware.CORSConfig      `toml:"cors"`
	Auth          middleware.AuthConfig      `toml:"auth"`
	RateLimit     middleware.RateLimitConfig `toml:"rate_limit"`
	OpenAPI       openapi.Config             `toml:"openapi"`
}

func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return defaultMaxUploadSize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested middleware configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Auth.Merge(&overlay.Auth)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("CLIENTES_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("CLIENTES_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}
