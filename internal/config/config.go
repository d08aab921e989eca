// Package config provides centralized configuration loaded from environment
// variables, optionally layered over a YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/htstatus/chpp-client/internal/cache"
	"github.com/htstatus/chpp-client/internal/provider/chpp"
)

// --------------------------------------------------------------------------
// Config struct: populated from file and environment
// --------------------------------------------------------------------------

type Config struct {
	// Consumer credentials identify the application; access credentials
	// identify the user who granted it access.
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	AccessKey      string `yaml:"access_key"`
	AccessSecret   string `yaml:"access_secret"`

	// Endpoints
	BaseURL  string `yaml:"base_url"`
	OAuthURL string `yaml:"oauth_url"`

	// Transport
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RetryTotal        int           `yaml:"retry_total"`
	RetryBackoff      time.Duration `yaml:"retry_backoff"`
	RetryJitter       float64       `yaml:"retry_jitter"`
	RetryRedirects    int           `yaml:"retry_redirects"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`

	// Cache
	CacheEnabled bool          `yaml:"cache_enabled"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`

	LogLevel    string `yaml:"log_level"`
	Environment string `yaml:"environment"` // development, staging, production
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		BaseURL:        chpp.DefaultBaseURL,
		OAuthURL:       chpp.DefaultOAuthURL,
		RequestTimeout: chpp.DefaultRequestTimeout,
		RetryTotal:     chpp.DefaultRetryTotal,
		RetryBackoff:   chpp.DefaultRetryBackoff,
		RetryJitter:    chpp.DefaultRetryJitter,
		RetryRedirects: chpp.DefaultRetryRedirects,
		CacheTTL:       cache.DefaultTTL,
		LogLevel:       "info",
		Environment:    "development",
	}
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML config file, then applies environment overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ConsumerKey = envOr("CHPP_CONSUMER_KEY", c.ConsumerKey)
	c.ConsumerSecret = envOr("CHPP_CONSUMER_SECRET", c.ConsumerSecret)
	c.AccessKey = envOr("CHPP_ACCESS_KEY", c.AccessKey)
	c.AccessSecret = envOr("CHPP_ACCESS_SECRET", c.AccessSecret)

	c.BaseURL = envOr("CHPP_BASE_URL", c.BaseURL)
	c.OAuthURL = envOr("CHPP_OAUTH_URL", c.OAuthURL)

	c.RequestTimeout = envDuration("CHPP_REQUEST_TIMEOUT", c.RequestTimeout)
	c.RetryTotal = envInt("CHPP_RETRY_TOTAL", c.RetryTotal)
	c.RetryBackoff = envDuration("CHPP_RETRY_BACKOFF", c.RetryBackoff)
	c.RetryJitter = envFloat("CHPP_RETRY_JITTER", c.RetryJitter)
	c.RetryRedirects = envInt("CHPP_RETRY_REDIRECTS", c.RetryRedirects)
	c.RequestsPerMinute = envInt("CHPP_REQUESTS_PER_MINUTE", c.RequestsPerMinute)

	c.CacheEnabled = envBool("CACHE_ENABLED", c.CacheEnabled)
	c.CacheTTL = envDuration("CACHE_TTL", c.CacheTTL)

	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.Environment = envOr("ENVIRONMENT", c.Environment)
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return errors.New("CHPP_CONSUMER_KEY and CHPP_CONSUMER_SECRET must be set")
	}
	if c.RetryTotal < 1 {
		return fmt.Errorf("retry total must be at least 1, got %d", c.RetryTotal)
	}
	if c.RetryJitter < 0 || c.RetryJitter > 1 {
		return fmt.Errorf("retry jitter must be within [0, 1], got %g", c.RetryJitter)
	}
	return nil
}

// HasAccessToken reports whether both halves of the access token are set.
func (c *Config) HasAccessToken() bool {
	return c.AccessKey != "" && c.AccessSecret != ""
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ClientConfig converts the settings into a chpp.Config. respCache may be nil.
func (c *Config) ClientConfig(respCache *cache.Cache) chpp.Config {
	return chpp.Config{
		ConsumerKey:       c.ConsumerKey,
		ConsumerSecret:    c.ConsumerSecret,
		AccessKey:         c.AccessKey,
		AccessSecret:      c.AccessSecret,
		BaseURL:           c.BaseURL,
		OAuthURL:          c.OAuthURL,
		RequestTimeout:    c.RequestTimeout,
		RetryTotal:        c.RetryTotal,
		RetryBackoff:      c.RetryBackoff,
		RetryJitter:       c.RetryJitter,
		RetryRedirects:    c.RetryRedirects,
		RequestsPerMinute: c.RequestsPerMinute,
		Cache:             respCache,
	}
}

// SlogLevel maps LogLevel to a slog level. Unknown names mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go durations ("15s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
