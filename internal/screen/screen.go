// Package screen binds one entity's filter store, list watch and mutations
// into a single view the console and CLI drive without knowing the record
// type.
package screen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/qcm-suite/qcm/internal/filter"
	"github.com/qcm-suite/qcm/internal/platform/apiclient"
	"github.com/qcm-suite/qcm/internal/platform/storage"
	"github.com/qcm-suite/qcm/internal/query"
	"github.com/qcm-suite/qcm/internal/resource"
)

// ErrDecode wraps malformed create/update payloads.
var ErrDecode = errors.New("screen: decode input")

// Info describes the entity behind a view.
type Info struct {
	Name      string   `json:"name"`
	Title     string   `json:"title"`
	Path      string   `json:"path"`
	Envelope  string   `json:"envelope"`
	Fields    []string `json:"fields"`
	Multipart bool     `json:"multipart"`
	Persisted bool     `json:"persisted"`
}

// Snapshot is the serializable state of a view.
type Snapshot struct {
	Entity      string       `json:"entity"`
	Status      query.Status `json:"status"`
	Data        any          `json:"data"`
	Error       string       `json:"error,omitempty"`
	ErrorStatus int          `json:"error_status,omitempty"`
	Filter      filter.State `json:"filter"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

// View is the type-erased surface of a Screen.
type View interface {
	Info() Info
	Start(ctx context.Context) error
	Stop()
	Filter() filter.State
	PatchFilter(p filter.Patch) error
	ResetFilter()
	NextPage()
	PrevPage()
	Refresh()
	Snapshot() Snapshot
	// List fetches the current filter's page synchronously.
	List(ctx context.Context) (any, error)
	Detail(ctx context.Context, id int64) (any, error)
	Create(ctx context.Context, raw json.RawMessage) (any, error)
	Update(ctx context.Context, id int64, raw json.RawMessage) (any, error)
	Delete(ctx context.Context, id int64) (resource.Message, error)
}

// Options configures a Screen.
type Options struct {
	// KV persists filter state for entities that opt in; nil disables it.
	KV     storage.Store
	Logger *slog.Logger
	Delay  time.Duration
}

// Screen is the View of one entity.
type Screen[T, In any] struct {
	res    *resource.Resource[T, In]
	store  *filter.Store
	watch  *query.Watch[resource.Page[T]]
	kv     storage.Store
	logger *slog.Logger

	mu        sync.Mutex
	unpersist func()
}

// New builds a stopped screen over res.
func New[T, In any](res *resource.Resource[T, In], opts Options) *Screen[T, In] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := res.NewStore()
	return &Screen[T, In]{
		res:    res,
		store:  store,
		watch:  res.Queries.Watch(store, query.WatchOptions{Delay: opts.Delay, Logger: logger}),
		kv:     opts.KV,
		logger: logger.With("screen", res.Definition.Name),
	}
}

func (s *Screen[T, In]) Info() Info {
	def := s.res.Definition
	fields := def.Fields
	if fields == nil {
		fields = []string{}
	}
	return Info{
		Name:      def.Name,
		Title:     def.Title,
		Path:      def.Path,
		Envelope:  def.Envelope.String(),
		Fields:    fields,
		Multipart: def.Multipart,
		Persisted: def.Persist && s.kv != nil,
	}
}

// Start restores persisted filters and begins watching the list.
func (s *Screen[T, In]) Start(ctx context.Context) error {
	if s.kv != nil && s.store.Spec().StorageKey != "" {
		stop, err := filter.Persist(ctx, s.store, s.kv, s.logger)
		if err != nil {
			return fmt.Errorf("screen %s: restore filters: %w", s.res.Definition.Name, err)
		}
		s.mu.Lock()
		s.unpersist = stop
		s.mu.Unlock()
	}
	s.watch.Start(ctx)
	return nil
}

func (s *Screen[T, In]) Stop() {
	s.watch.Stop()
	s.mu.Lock()
	stop := s.unpersist
	s.unpersist = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Store exposes the filter store for typed callers.
func (s *Screen[T, In]) Store() *filter.Store { return s.store }

// Watch exposes the typed list watch.
func (s *Screen[T, In]) Watch() *query.Watch[resource.Page[T]] { return s.watch }

func (s *Screen[T, In]) Filter() filter.State { return s.store.Snapshot() }

func (s *Screen[T, In]) PatchFilter(p filter.Patch) error { return s.store.SetFilter(p) }

func (s *Screen[T, In]) ResetFilter() { s.store.Reset() }

func (s *Screen[T, In]) NextPage() { s.store.NextPage() }

func (s *Screen[T, In]) PrevPage() { s.store.PrevPage() }

func (s *Screen[T, In]) Refresh() { s.watch.Refresh() }

func (s *Screen[T, In]) Snapshot() Snapshot {
	res := s.watch.Result()
	snap := Snapshot{
		Entity: s.res.Definition.Name,
		Status: res.Status,
		Filter: res.State,
	}
	if res.Status != query.StatusIdle {
		snap.Data = res.Data
	}
	if res.Err != nil {
		snap.Error = resource.Describe(res.Err)
		snap.ErrorStatus = apiclient.StatusCode(res.Err)
	}
	if !res.UpdatedAt.IsZero() {
		at := res.UpdatedAt
		snap.UpdatedAt = &at
	}
	return snap
}

func (s *Screen[T, In]) List(ctx context.Context) (any, error) {
	return s.res.Queries.List(ctx, s.store.Snapshot())
}

func (s *Screen[T, In]) Detail(ctx context.Context, id int64) (any, error) {
	return s.res.Queries.Detail(ctx, id)
}

func (s *Screen[T, In]) Create(ctx context.Context, raw json.RawMessage) (any, error) {
	in, err := decode[In](raw)
	if err != nil {
		return nil, err
	}
	return s.res.Mutations.Create(ctx, in)
}

func (s *Screen[T, In]) Update(ctx context.Context, id int64, raw json.RawMessage) (any, error) {
	in, err := decode[In](raw)
	if err != nil {
		return nil, err
	}
	return s.res.Mutations.Update(ctx, id, in)
}

func (s *Screen[T, In]) Delete(ctx context.Context, id int64) (resource.Message, error) {
	return s.res.Mutations.Delete(ctx, id)
}

func decode[In any](raw json.RawMessage) (In, error) {
	var in In
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return in, nil
}
