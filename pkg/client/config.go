package client

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/docker/go-units"
)

// Config holds API client settings. It is resolved once at startup and
// passed explicitly to New.
type Config struct {
	// BaseURL is prefixed to every relative request path.
	// Default: the profile's DefaultBaseURL.
	BaseURL string `toml:"base_url"`

	Profile Profile `toml:"profile"`

	// TokenKey is the local storage key holding the bearer token.
	TokenKey string `toml:"token_key"`

	ContentType        string `toml:"content_type"`
	Timeout            string `toml:"timeout"`
	MaxResponseSize    string `toml:"max_response_size"`
	maxResponseSizeVal int64
}

// Env maps environment variable names for client configuration.
type Env struct {
	BaseURL         string
	Profile         string
	TokenKey        string
	Timeout         string
	MaxResponseSize string
}

// TimeoutDuration parses and returns the request timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// MaxResponseSizeBytes returns the parsed max_response_size. Valid after Finalize.
func (c *Config) MaxResponseSizeBytes() int64 {
	return c.maxResponseSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
// The base URL is resolved last so that an environment-selected profile
// determines the fallback.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	c.BaseURL = ResolveBaseURL(c.BaseURL, c.Profile)
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Profile != "" {
		c.Profile = overlay.Profile
	}
	if overlay.TokenKey != "" {
		c.TokenKey = overlay.TokenKey
	}
	if overlay.ContentType != "" {
		c.ContentType = overlay.ContentType
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if size, err := units.FromHumanSize(overlay.MaxResponseSize); err == nil {
		c.MaxResponseSize = overlay.MaxResponseSize
		c.maxResponseSizeVal = size
	}
}

func (c *Config) loadDefaults() {
	if c.Profile == "" {
		c.Profile = ProfileStatic
	}
	if c.TokenKey == "" {
		c.TokenKey = "token"
	}
	if c.ContentType == "" {
		c.ContentType = "application/json"
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.MaxResponseSize == "" {
		c.MaxResponseSize = "10MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.Profile != "" {
		if v := os.Getenv(env.Profile); v != "" {
			c.Profile = Profile(v)
		}
	}
	if env.TokenKey != "" {
		if v := os.Getenv(env.TokenKey); v != "" {
			c.TokenKey = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.MaxResponseSize != "" {
		if v := os.Getenv(env.MaxResponseSize); v != "" {
			c.MaxResponseSize = v
		}
	}
}

func (c *Config) validate() error {
	if err := c.Profile.Validate(); err != nil {
		return err
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base_url: host required")
	}

	if d, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	} else if d < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	size, err := units.FromHumanSize(c.MaxResponseSize)
	if err != nil {
		return fmt.Errorf("invalid max_response_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_response_size must be positive")
	}
	c.maxResponseSizeVal = size

	return nil
}
