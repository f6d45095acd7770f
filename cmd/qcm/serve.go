package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/qcm-suite/qcm/internal/app"
	"github.com/qcm-suite/qcm/internal/console"
	"github.com/qcm-suite/qcm/internal/masterdata"
	"github.com/qcm-suite/qcm/internal/notify"
	"github.com/qcm-suite/qcm/internal/platform/apiclient"
	"github.com/qcm-suite/qcm/internal/screen"
	"github.com/qcm-suite/qcm/jobs"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the operator console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.serve(cmd.Context()); err != nil {
				return c.fail(err)
			}
			return nil
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	cfg, logger := c.cfg, c.logger
	opts := c.runtimeOpts
	if opts.Navigator == nil {
		opts.Navigator = apiclient.NavigatorFunc(func(path string) {
			logger.Warn("backend session expired", slog.String("login", path))
		})
	}
	rt, err := app.NewRuntime(ctx, cfg, logger, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := rt.ListenInvalidations(ctx); err != nil {
		logger.Warn("listen for cache invalidations", slog.Any("error", err))
	}

	notifier := notify.Multi{rt.Notifications, notify.NewLog(logger)}
	views := masterdata.Screens(rt.Deps(notifier), screen.Options{
		KV:     rt.KV,
		Logger: logger,
		Delay:  cfg.SearchDebounce,
	})

	var (
		warmup    console.WarmupEnqueuer
		inspector *asynq.Inspector
	)
	if cfg.UsesRedis() {
		client, err := jobs.NewClient(rt.RedisOpts())
		if err != nil {
			return err
		}
		defer client.Close()
		warmup = client
		inspector = asynq.NewInspector(rt.RedisOpts())
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
	}

	handler := console.NewHandler(console.Config{
		Views:         views,
		Notifications: rt.Notifications,
		Tokens:        rt.Tokens,
		LoginPath:     cfg.LoginPath,
		Warmup:        warmup,
		Logger:        logger,
	})
	defer handler.Close()

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Console: handler,
		Jobs:    jobs.NewHandler(inspector, logger),
		Metrics: rt.Metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("backend", rt.Client.BaseURL()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
