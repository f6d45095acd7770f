package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBaseURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"development default", Config{AppEnv: "development", APIBaseURLDev: "http://dev/api", APIBaseURLProd: "https://prod/api"}, "http://dev/api"},
		{"production", Config{AppEnv: "production", APIBaseURLDev: "http://dev/api", APIBaseURLProd: "https://prod/api"}, "https://prod/api"},
		{"override", Config{AppEnv: "production", APIBaseURL: " http://override/api ", APIBaseURLProd: "https://prod/api"}, "http://override/api"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cfg.ResolveBaseURL())
		})
	}
	var nilCfg *Config
	assert.Empty(t, nilCfg.ResolveBaseURL())
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("API_BASE_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8088", cfg.AppAddr)
	assert.Equal(t, "http://localhost:8000/api", cfg.ResolveBaseURL())
	assert.Equal(t, 500*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 30*time.Second, cfg.ListStaleTime)
	assert.Equal(t, 5*time.Minute, cfg.ReferenceStaleTime)
	assert.Equal(t, 24*time.Hour, cfg.QueryPersistTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, "/login", cfg.LoginPath)
	assert.Zero(t, cfg.APITimeout)
	assert.False(t, cfg.UsesRedis())
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	_, err := LoadConfig()
	require.Error(t, err)
}
