package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	jobmetrics "github.com/qcm-suite/qcm/internal/jobs"
	"github.com/qcm-suite/qcm/internal/notify"
	"github.com/qcm-suite/qcm/internal/observability"
	"github.com/qcm-suite/qcm/internal/platform/apiclient"
	"github.com/qcm-suite/qcm/internal/platform/cache"
	"github.com/qcm-suite/qcm/internal/platform/storage"
	"github.com/qcm-suite/qcm/internal/query"
	"github.com/qcm-suite/qcm/internal/resource"
)

const testModeEnv = "QCM_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether binaries should skip startup side effects.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode updates the cached flag after environment changes.
func RefreshTestMode() {
	detectTestMode()
}

// RuntimeOptions customises NewRuntime.
type RuntimeOptions struct {
	// Navigator receives the login path after a 401.
	Navigator apiclient.Navigator
	// HTTPClient overrides the backend transport; tests point it at httptest.
	HTTPClient *http.Client
	// Redis reuses an existing connection instead of dialing cfg.RedisAddr.
	Redis *redis.Client
}

// Runtime holds the process-wide dependencies shared by the console, the CLI
// and the worker.
type Runtime struct {
	Config *Config
	Logger *slog.Logger

	Redis   *redis.Client
	KV      storage.Store
	Tokens  *apiclient.TokenStore
	Client  *apiclient.Client
	Cache   *query.Cache
	Backend *query.RedisBackend

	Notifications *notify.Queue
	Metrics       *observability.Metrics
	JobMetrics    *jobmetrics.Metrics

	ownsRedis bool
}

// NewRuntime connects storage and builds the backend client and query cache.
func NewRuntime(ctx context.Context, cfg *Config, logger *slog.Logger, opts RuntimeOptions) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{
		Config:        cfg,
		Logger:        logger,
		Notifications: notify.NewQueue(0),
		Metrics:       observability.NewMetrics(),
	}
	rt.JobMetrics = jobmetrics.NewMetrics(rt.Metrics.Registerer())

	if cfg.UsesRedis() {
		client := opts.Redis
		if client == nil {
			var err error
			client, err = cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
			if err != nil {
				return nil, err
			}
			rt.ownsRedis = true
		}
		rt.Redis = client
		rt.KV = storage.NewRedis(client, "")
		rt.Backend = query.NewRedisBackend(client, query.RedisOptions{TTL: cfg.QueryPersistTTL})
	} else {
		rt.KV = storage.NewMemory()
	}

	cacheOpts := query.Options{
		Metrics: query.NewMetrics(rt.Metrics.Registerer()),
		Logger:  logger,
	}
	if rt.Backend != nil {
		cacheOpts.Backend = rt.Backend
	}
	rt.Cache = query.NewCache(cacheOpts)

	rt.Tokens = apiclient.NewTokenStore(rt.KV, apiclient.DefaultTokenKey)
	clientOpts := []apiclient.Option{
		apiclient.WithLogger(logger),
		apiclient.WithRecorder(rt.Metrics),
		apiclient.WithHTTPClient(opts.HTTPClient),
	}
	if opts.Navigator != nil {
		clientOpts = append(clientOpts, apiclient.WithNavigator(opts.Navigator))
	}
	client, err := apiclient.New(apiclient.Config{
		BaseURL:   cfg.ResolveBaseURL(),
		LoginPath: cfg.LoginPath,
		Timeout:   cfg.APITimeout,
	}, rt.Tokens, clientOpts...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("app: backend client: %w", err)
	}
	rt.Client = client
	return rt, nil
}

// Deps returns the resource dependencies with notifier as the toast sink.
func (rt *Runtime) Deps(notifier notify.Notifier) resource.Deps {
	return resource.Deps{
		Client:         rt.Client,
		Cache:          rt.Cache,
		Notifier:       notifier,
		Logger:         rt.Logger,
		ListStale:      rt.Config.ListStaleTime,
		ReferenceStale: rt.Config.ReferenceStaleTime,
	}
}

// ListenInvalidations applies invalidations published by other processes.
// It is a no-op without the Redis backend.
func (rt *Runtime) ListenInvalidations(ctx context.Context) error {
	if rt.Backend == nil {
		return nil
	}
	return rt.Backend.Listen(ctx, rt.Cache, rt.Logger)
}

// RedisOpts returns the asynq connection options for the configured Redis.
func (rt *Runtime) RedisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: rt.Config.RedisAddr}
}

// Close releases the Redis connection when the runtime opened it.
func (rt *Runtime) Close() error {
	if rt == nil || rt.Redis == nil || !rt.ownsRedis {
		return nil
	}
	return rt.Redis.Close()
}
