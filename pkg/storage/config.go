package storage

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
)

// Backend selects the storage implementation.
type Backend string

// Supported backends.
const (
	BackendFilesystem Backend = "filesystem"
	BackendMemory     Backend = "memory"
	BackendPostgres   Backend = "postgres"
)

// Config contains local storage configuration.
type Config struct {
	Backend Backend `toml:"backend"`

	// BasePath is the root directory for filesystem storage.
	// Default: ".data/local"
	BasePath string `toml:"base_path"`

	// DSN is the PostgreSQL connection URL used by the postgres backend.
	DSN string `toml:"dsn"`

	MaxValueSize    string `toml:"max_value_size"`
	maxValueSizeVal int64
}

// Env maps environment variable names for storage configuration.
type Env struct {
	Backend      string
	BasePath     string
	DSN          string
	MaxValueSize string
}

// MaxValueSizeBytes returns the parsed max_value_size. Valid after Finalize.
func (c *Config) MaxValueSizeBytes() int64 {
	return c.maxValueSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.DSN != "" {
		c.DSN = overlay.DSN
	}
	if size, err := units.FromHumanSize(overlay.MaxValueSize); err == nil {
		c.MaxValueSize = overlay.MaxValueSize
		c.maxValueSizeVal = size
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFilesystem
	}
	if c.BasePath == "" {
		c.BasePath = ".data/local"
	}
	if c.MaxValueSize == "" {
		c.MaxValueSize = "64KB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Backend != "" {
		if v := os.Getenv(env.Backend); v != "" {
			c.Backend = Backend(v)
		}
	}
	if env.BasePath != "" {
		if v := os.Getenv(env.BasePath); v != "" {
			c.BasePath = v
		}
	}
	if env.DSN != "" {
		if v := os.Getenv(env.DSN); v != "" {
			c.DSN = v
		}
	}
	if env.MaxValueSize != "" {
		if v := os.Getenv(env.MaxValueSize); v != "" {
			c.MaxValueSize = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendFilesystem:
		if c.BasePath == "" {
			return fmt.Errorf("base_path required")
		}
	case BackendPostgres:
		if c.DSN == "" {
			return fmt.Errorf("dsn required for postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid backend: %s (must be filesystem, memory, or postgres)", c.Backend)
	}

	size, err := units.FromHumanSize(c.MaxValueSize)
	if err != nil {
		return fmt.Errorf("invalid max_value_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_value_size must be positive")
	}
	c.maxValueSizeVal = size

	return nil
}
