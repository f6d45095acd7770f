// Package console is the operator-facing JSON surface over the master-data
// screens: filter state, watched lists, detail reads, mutations, toasts and
// the session token.
package console

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/qcm-suite/qcm/internal/notify"
	"github.com/qcm-suite/qcm/internal/platform/apiclient"
	"github.com/qcm-suite/qcm/internal/screen"
	"github.com/qcm-suite/qcm/jobs"
)

// WarmupEnqueuer schedules a reference warmup.
type WarmupEnqueuer interface {
	EnqueueReferenceWarmup(ctx context.Context, payload jobs.ReferenceWarmupPayload) (*asynq.TaskInfo, error)
}

// Config collects the handler dependencies.
type Config struct {
	Views         map[string]screen.View
	Notifications *notify.Queue
	Tokens        *apiclient.TokenStore
	// LoginPath is sent as Location on 401 responses.
	LoginPath string
	Warmup    WarmupEnqueuer
	Logger    *slog.Logger
}

// Handler serves the console routes.
type Handler struct {
	views         map[string]screen.View
	names         []string
	notifications *notify.Queue
	tokens        *apiclient.TokenStore
	loginPath     string
	warmup        WarmupEnqueuer
	logger        *slog.Logger

	mu      sync.Mutex
	started map[string]bool
	closed  bool
}

// NewHandler constructs the console handler. Views start on first use.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	names := make([]string, 0, len(cfg.Views))
	for name := range cfg.Views {
		names = append(names, name)
	}
	sort.Strings(names)
	queue := cfg.Notifications
	if queue == nil {
		queue = notify.NewQueue(0)
	}
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Handler{
		views:         cfg.Views,
		names:         names,
		notifications: queue,
		tokens:        cfg.Tokens,
		loginPath:     loginPath,
		warmup:        cfg.Warmup,
		logger:        logger,
		started:       make(map[string]bool),
	}
}

// MountRoutes attaches the console routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/entities", h.entities)
	r.Route("/screens/{entity}", func(r chi.Router) {
		r.Use(h.withView)
		r.Get("/", h.show)
		r.Get("/filter", h.filter)
		r.Patch("/filter", h.patchFilter)
		r.Post("/filter/reset", h.resetFilter)
		r.Post("/filter/next", h.nextPage)
		r.Post("/filter/prev", h.prevPage)
		r.Post("/refresh", h.refresh)
		r.Post("/items", h.create)
		r.Get("/items/{id}", h.detail)
		r.Patch("/items/{id}", h.update)
		r.Delete("/items/{id}", h.remove)
	})
	r.Get("/notifications", h.drainNotifications)
	r.Put("/session/token", h.setToken)
	r.Delete("/session/token", h.clearToken)
	if h.warmup != nil {
		r.Post("/jobs/reference-warmup", h.enqueueWarmup)
	}
}

// Close stops every started view.
func (h *Handler) Close() {
	h.mu.Lock()
	h.closed = true
	names := make([]string, 0, len(h.started))
	for name := range h.started {
		names = append(names, name)
	}
	h.started = make(map[string]bool)
	h.mu.Unlock()
	for _, name := range names {
		h.views[name].Stop()
	}
}

func (h *Handler) ensureStarted(name string, view screen.View) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.started[name] {
		return nil
	}
	if err := view.Start(context.Background()); err != nil {
		return err
	}
	h.started[name] = true
	return nil
}
