package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Supported cache drivers.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config selects and parameterizes the cache backend.
type Config struct {
	Driver        string `toml:"driver"`
	TTL           string `toml:"ttl"`
	Prefix        string `toml:"prefix"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Driver        string
	TTL           string
	Prefix        string
	RedisAddr     string
	RedisPassword string
	RedisDB       string
}

// TTLDuration returns TTL as a time.Duration.
func (c *Config) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Enabled reports whether a cache backend is configured.
func (c *Config) Enabled() bool {
	return c.Driver != DriverNone
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.RedisAddr != "" {
		c.RedisAddr = overlay.RedisAddr
	}
	if overlay.RedisPassword != "" {
		c.RedisPassword = overlay.RedisPassword
	}
	if overlay.RedisDB != 0 {
		c.RedisDB = overlay.RedisDB
	}
}

func (c *Config) loadDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.TTL == "" {
		c.TTL = "5m"
	}
	if c.Prefix == "" {
		c.Prefix = "clientes:"
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Driver != "" {
		if v := os.Getenv(env.Driver); v != "" {
			c.Driver = v
		}
	}
	if env.TTL != "" {
		if v := os.Getenv(env.TTL); v != "" {
			c.TTL = v
		}
	}
	if env.Prefix != "" {
		if v := os.Getenv(env.Prefix); v != "" {
			c.Prefix = v
		}
	}
	if env.RedisAddr != "" {
		if v := os.Getenv(env.RedisAddr); v != "" {
			c.RedisAddr = v
		}
	}
	if env.RedisPassword != "" {
		if v := os.Getenv(env.RedisPassword); v != "" {
			c.RedisPassword = v
		}
	}
	if env.RedisDB != "" {
		if v := os.Getenv(env.RedisDB); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.RedisDB = n
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Driver {
	case DriverNone, DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("unknown driver: %s", c.Driver)
	}
	if d, err := time.ParseDuration(c.TTL); err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	if c.Driver == DriverRedis && c.RedisAddr == "" {
		return fmt.Errorf("redis_addr required")
	}
	return nil
}
