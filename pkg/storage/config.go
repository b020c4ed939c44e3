package storage

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds Azure Blob Storage connection parameters.
// PublicURL, when set, replaces the account endpoint in generated blob URLs
// (e.g. a CDN in front of the container).
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	PublicURL        string `toml:"public_url"`
	PublicAccess     *bool  `toml:"public_access"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	PublicURL        string
	PublicAccess     string
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
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.PublicURL != "" {
		c.PublicURL = overlay.PublicURL
	}
	if overlay.PublicAccess != nil {
		c.PublicAccess = overlay.PublicAccess
	}
}

// Public reports whether blobs should be anonymously readable.
func (c *Config) Public() bool {
	return c.PublicAccess != nil && *c.PublicAccess
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "icons"
	}
	if c.PublicAccess == nil {
		public := true
		c.PublicAccess = &public
	}
	c.PublicURL = strings.TrimSuffix(c.PublicURL, "/")
}

func (c *Config) loadEnv(env *Env) {
	if env.ContainerName != "" {
		if v := os.Getenv(env.ContainerName); v != "" {
			c.ContainerName = v
		}
	}
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.PublicURL != "" {
		if v := os.Getenv(env.PublicURL); v != "" {
			c.PublicURL = strings.TrimSuffix(v, "/")
		}
	}
	if env.PublicAccess != "" {
		if v := os.Getenv(env.PublicAccess); v != "" {
			if public, err := strconv.ParseBool(v); err == nil {
				c.PublicAccess = &public
			}
		}
	}
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required")
	}
	return nil
}
