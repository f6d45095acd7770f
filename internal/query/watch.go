package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/qcm-suite/qcm/internal/filter"
)

// DefaultSearchDelay is how long a Watch waits after the last search change
// before fetching.
const DefaultSearchDelay = 500 * time.Millisecond

// Status is the lifecycle of a Watch result.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the latest outcome of a Watch. Data keeps the last successful
// value while a refetch is loading or after it failed.
type Result[R any] struct {
	Status    Status       `json:"status"`
	Data      R            `json:"data"`
	Err       error        `json:"-"`
	State     filter.State `json:"filter"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// WatchOptions configures a Watch.
type WatchOptions struct {
	// Delay debounces search changes; zero means DefaultSearchDelay.
	Delay  time.Duration
	Logger *slog.Logger
	// Cache and Key, when both set, make the watch refetch whenever its
	// current key is invalidated.
	Cache *Cache
	Key   func(filter.State) Key
	Now   func() time.Time
}

// Watch keeps a fetched result in sync with a filter store. Search changes
// are debounced and any other change fetches immediately. A single update
// that changes search along with other fields, such as a SetFilter that also
// moves the page, is debounced as a whole: nothing is fetched until the delay
// passes, and the fetch then uses the store's state at that moment.
type Watch[R any] struct {
	store    *filter.Store
	fetch    func(context.Context, filter.State) (R, error)
	debounce *Debouncer
	logger   *slog.Logger
	cache    *Cache
	keyFn    func(filter.State) Key
	now      func() time.Time

	mu        sync.Mutex
	result    Result[R]
	requested filter.State
	started   bool
	stopped   bool
	ctx       context.Context
	cancel    context.CancelFunc
	unsub     []func()
	wg        sync.WaitGroup
	listeners map[int]func(Result[R])
	nextID    int
}

// NewWatch binds fetch to store. Nothing is fetched until Start.
func NewWatch[R any](store *filter.Store, fetch func(context.Context, filter.State) (R, error), opts WatchOptions) *Watch[R] {
	if opts.Delay <= 0 {
		opts.Delay = DefaultSearchDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Watch[R]{
		store:     store,
		fetch:     fetch,
		debounce:  NewDebouncer(opts.Delay),
		logger:    opts.Logger,
		cache:     opts.Cache,
		keyFn:     opts.Key,
		now:       opts.Now,
		result:    Result[R]{Status: StatusIdle, State: store.Snapshot()},
		listeners: make(map[int]func(Result[R])),
	}
}

// Start subscribes to the store and issues the first fetch. Calling it
// twice is a no-op.
func (w *Watch[R]) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started || w.stopped {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	unsubs := []func(){w.store.Subscribe(w.onChange)}
	if w.cache != nil && w.keyFn != nil {
		unsubs = append(unsubs, w.cache.OnInvalidate(w.onInvalidate))
	}
	w.mu.Lock()
	w.unsub = unsubs
	w.mu.Unlock()

	w.run(w.store.Snapshot())
}

// Stop cancels any pending debounced fetch and waits for running fetches.
// Their results are discarded.
func (w *Watch[R]) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	unsubs := w.unsub
	w.unsub = nil
	cancel := w.cancel
	w.mu.Unlock()

	for _, fn := range unsubs {
		fn()
	}
	w.debounce.Cancel()
	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// Refresh fetches the current state now, skipping any pending debounce.
func (w *Watch[R]) Refresh() {
	w.debounce.Cancel()
	w.run(w.store.Snapshot())
}

// Result returns the latest result.
func (w *Watch[R]) Result() Result[R] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Subscribe registers fn for every result transition. The returned func
// unregisters it.
func (w *Watch[R]) Subscribe(fn func(Result[R])) func() {
	w.mu.Lock()
	w.nextID++
	id := w.nextID
	w.listeners[id] = fn
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		delete(w.listeners, id)
		w.mu.Unlock()
	}
}

func (w *Watch[R]) onChange(prev, next filter.State) {
	if prev.Search != next.Search {
		w.debounce.Schedule(func() { w.run(w.store.Snapshot()) })
		return
	}
	w.debounce.Cancel()
	w.run(next)
}

func (w *Watch[R]) onInvalidate(prefix Key) {
	w.mu.Lock()
	st := w.requested
	active := w.started && !w.stopped
	w.mu.Unlock()
	if !active || !w.keyFn(st).HasPrefix(prefix) {
		return
	}
	w.run(st)
}

func (w *Watch[R]) run(state filter.State) {
	w.mu.Lock()
	if !w.started || w.stopped {
		w.mu.Unlock()
		return
	}
	ctx := w.ctx
	w.requested = state.Clone()
	w.result.Status = StatusLoading
	w.result.State = state.Clone()
	w.wg.Add(1)
	res, listeners := w.result, w.listenersLocked()
	w.mu.Unlock()
	notifyAll(listeners, res)

	go func() {
		defer w.wg.Done()
		data, err := w.fetch(ctx, state)

		w.mu.Lock()
		if w.stopped || !w.requested.Equal(state) {
			w.mu.Unlock()
			return
		}
		if err != nil {
			w.result.Status = StatusError
			w.result.Err = err
		} else {
			w.result.Status = StatusSuccess
			w.result.Data = data
			w.result.Err = nil
			w.result.UpdatedAt = w.now()
		}
		res, listeners := w.result, w.listenersLocked()
		w.mu.Unlock()

		if err != nil {
			w.logger.Debug("watch fetch failed", slog.String("filter", w.store.Spec().Name), slog.Any("error", err))
		}
		notifyAll(listeners, res)
	}()
}

func (w *Watch[R]) listenersLocked() []func(Result[R]) {
	if len(w.listeners) == 0 {
		return nil
	}
	out := make([]func(Result[R]), 0, len(w.listeners))
	for i := 1; i <= w.nextID; i++ {
		if fn, ok := w.listeners[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notifyAll[R any](listeners []func(Result[R]), res Result[R]) {
	for _, fn := range listeners {
		fn(res)
	}
}
