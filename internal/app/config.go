package app

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage backends for the token, persisted filters and query cache.
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds runtime configuration for the console, CLI and worker.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8088"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	APIBaseURL     string        `envconfig:"API_BASE_URL"`
	APIBaseURLDev  string        `envconfig:"API_BASE_URL_DEV" default:"http://localhost:8000/api"`
	APIBaseURLProd string        `envconfig:"API_BASE_URL_PROD" default:"https://qcm-api.example.com/api"`
	APITimeout     time.Duration `envconfig:"API_TIMEOUT" default:"0s"`
	LoginPath      string        `envconfig:"LOGIN_PATH" default:"/login"`

	RedisAddr      string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"redis"`

	SearchDebounce     time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"500ms"`
	ListStaleTime      time.Duration `envconfig:"LIST_STALE_TIME" default:"30s"`
	ReferenceStaleTime time.Duration `envconfig:"REFERENCE_STALE_TIME" default:"5m"`
	QueryPersistTTL    time.Duration `envconfig:"QUERY_PERSIST_TTL" default:"24h"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case StorageRedis, StorageMemory:
	default:
		return errors.New("storage backend must be redis or memory")
	}
	if c.ResolveBaseURL() == "" {
		return errors.New("api base url must be provided")
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("rate limit must not be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// ResolveBaseURL picks the QC backend URL. API_BASE_URL wins; otherwise the
// production or development URL is chosen by APP_ENV.
func (c *Config) ResolveBaseURL() string {
	if c == nil {
		return ""
	}
	if v := strings.TrimSpace(c.APIBaseURL); v != "" {
		return v
	}
	if c.IsProduction() {
		return strings.TrimSpace(c.APIBaseURLProd)
	}
	return strings.TrimSpace(c.APIBaseURLDev)
}

// UsesRedis reports whether local storage and the query cache live in Redis.
func (c *Config) UsesRedis() bool {
	return c != nil && c.StorageBackend == StorageRedis
}
