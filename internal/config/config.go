// Package config loads service configuration from TOML files, an optional
// .env file, and CLIENTES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/clientes/pkg/cache"
	"github.com/JaimeStill/clientes/pkg/database"
	"github.com/JaimeStill/clientes/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvClientesEnv             = "CLIENTES_ENV"
	EnvClientesShutdownTimeout = "CLIENTES_SHUTDOWN_TIMEOUT"
	EnvClientesVersion         = "CLIENTES_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "CLIENTES_DB_URL",
	Host:            "CLIENTES_DB_HOST",
	Port:            "CLIENTES_DB_PORT",
	Name:            "CLIENTES_DB_NAME",
	User:            "CLIENTES_DB_USER",
	Password:        "CLIENTES_DB_PASSWORD",
	SSLMode:         "CLIENTES_DB_SSL_MODE",
	MaxOpenConns:    "CLIENTES_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CLIENTES_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CLIENTES_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CLIENTES_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "CLIENTES_STORAGE_CONTAINER_NAME",
	ConnectionString: "CLIENTES_STORAGE_CONNECTION_STRING",
	PublicURL:        "CLIENTES_STORAGE_PUBLIC_URL",
	PublicAccess:     "CLIENTES_STORAGE_PUBLIC_ACCESS",
}

var cacheEnv = &cache.Env{
	Driver:        "CLIENTES_CACHE_DRIVER",
	TTL:           "CLIENTES_CACHE_TTL",
	Prefix:        "CLIENTES_CACHE_PREFIX",
	RedisAddr:     "CLIENTES_CACHE_REDIS_ADDR",
	RedisPassword: "CLIENTES_CACHE_REDIS_PASSWORD",
	RedisDB:       "CLIENTES_CACHE_REDIS_DB",
}

// Config is the root configuration for the clientes service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Cache           cache.Config    `toml:"cache"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the CLIENTES_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvClientesEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads .env (if present) into the process environment, then the base
// config (if present), applies any environment overlay, and finalizes all
// values. Variables already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := LoadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads path into the environment without overriding existing
// variables. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvClientesShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvClientesVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvClientesEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
