package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcm-suite/qcm/internal/console"
	"github.com/qcm-suite/qcm/internal/masterdata"
	"github.com/qcm-suite/qcm/internal/screen"
)

func testConfig(baseURL string) *Config {
	return &Config{
		AppEnv:             "development",
		APIBaseURL:         baseURL,
		LoginPath:          "/login",
		StorageBackend:     StorageMemory,
		RateLimitPerMinute: 120,
	}
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer upstream.Close()

	cfg := testConfig(upstream.URL)
	rt, err := NewRuntime(context.Background(), cfg, nil, RuntimeOptions{})
	require.NoError(t, err)
	defer rt.Close()

	h := console.NewHandler(console.Config{
		Views:         masterdata.Screens(rt.Deps(rt.Notifications), screen.Options{KV: rt.KV}),
		Notifications: rt.Notifications,
		Tokens:        rt.Tokens,
		LoginPath:     cfg.LoginPath,
	})
	defer h.Close()

	srv := httptest.NewServer(NewRouter(RouterParams{Config: cfg, Console: h, Metrics: rt.Metrics}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	resp, err = http.Get(srv.URL + "/console/entities")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.Contains(string(body), "qcm_http_requests_total"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1/api")
	cfg.RateLimitPerMinute = 2
	srv := httptest.NewServer(NewRouter(RouterParams{Config: cfg}))
	defer srv.Close()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRuntimeWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig("http://127.0.0.1:1/api")
	cfg.StorageBackend = StorageRedis
	cfg.RedisAddr = mr.Addr()

	rt, err := NewRuntime(context.Background(), cfg, nil, RuntimeOptions{})
	require.NoError(t, err)
	defer rt.Close()

	require.NotNil(t, rt.Backend)
	require.NoError(t, rt.Tokens.Set(context.Background(), "secret"))
	assert.True(t, mr.Exists("qcm:local:token"))
	assert.Equal(t, mr.Addr(), rt.RedisOpts().Addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, rt.ListenInvalidations(ctx))
}

func TestRuntimeRejectsBadBaseURL(t *testing.T) {
	cfg := testConfig("not a url")
	_, err := NewRuntime(context.Background(), cfg, nil, RuntimeOptions{})
	require.Error(t, err)
}
