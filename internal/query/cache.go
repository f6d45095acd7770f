package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrTypeMismatch is returned when a key is read with a different type than
// the one it was stored with.
var ErrTypeMismatch = errors.New("query: cached value type mismatch")

// DefaultGCTime is how long an entry may go unread before it is dropped.
const DefaultGCTime = 5 * time.Minute

// Record is the persisted form of an entry.
type Record struct {
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Backend is an optional second-level store shared between processes.
type Backend interface {
	Load(ctx context.Context, key Key) (Record, bool, error)
	Save(ctx context.Context, key Key, rec Record) error
	Invalidate(ctx context.Context, prefix Key) error
	Remove(ctx context.Context, key Key) error
}

// entry fields are guarded by Cache.mu; lastUsed is touched by readers
// holding only the read lock.
type entry struct {
	key       Key
	value     any
	updatedAt time.Time
	stale     bool
	lastUsed  atomic.Int64
}

func newEntry(key Key, value any, updatedAt time.Time, stale bool, used time.Time) *entry {
	e := &entry{key: key, value: value, updatedAt: updatedAt, stale: stale}
	e.lastUsed.Store(used.UnixNano())
	return e
}

// Options configures a Cache.
type Options struct {
	Backend Backend
	Metrics *Metrics
	Logger  *slog.Logger
	Now     func() time.Time
	// GCTime drops entries unread for that long; zero means DefaultGCTime.
	GCTime time.Duration
}

// Cache holds query results keyed by Key. Concurrent reads of one key share
// a single in-flight call.
type Cache struct {
	backend Backend
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
	gcTime  time.Duration

	group singleflight.Group

	mu       sync.RWMutex
	entries  map[string]*entry
	inflight map[string]inflight
	// invalidated records the invalidation sequence applied to a key while
	// a fetch for it was running, so that fetch lands as stale. Dropped once
	// no fetch for the key is in flight.
	invalidated map[string]uint64
	seq         uint64
	lastGC      time.Time

	subs  map[int]func(Key)
	subID int
}

type inflight struct {
	key   Key
	count int
}

// NewCache builds an empty cache.
func NewCache(opts Options) *Cache {
	c := &Cache{
		backend:     opts.Backend,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		now:         opts.Now,
		gcTime:      opts.GCTime,
		entries:     make(map[string]*entry),
		inflight:    make(map[string]inflight),
		invalidated: make(map[string]uint64),
		subs:        make(map[int]func(Key)),
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.gcTime <= 0 {
		c.gcTime = DefaultGCTime
	}
	c.lastGC = c.now()
	return c
}

// Fetch returns the value cached under key when it is younger than
// staleTime, and otherwise calls fn. Concurrent Fetches of the same key share
// one call of fn, which keeps running when the first caller gives up.
// Failed calls are not cached and leave any previous value in place.
func Fetch[T any](ctx context.Context, c *Cache, key Key, staleTime time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	ks := key.String()
	entity := key.Entity()

	if v, ok, err := lookup[T](c, ks, staleTime); ok || err != nil {
		if err == nil {
			c.metrics.hit(entity, "memory")
		}
		return v, err
	}
	if v, ok := loadBackend[T](ctx, c, key, ks, staleTime); ok {
		c.metrics.hit(entity, "backend")
		return v, nil
	}
	c.metrics.miss(entity)

	ch := c.group.DoChan(ks, func() (any, error) {
		started := c.begin(key, ks)
		defer c.end(ks)

		fetchCtx := context.WithoutCancel(ctx)
		begin := time.Now()
		v, err := fn(fetchCtx)
		c.metrics.fetched(entity, err, time.Since(begin))
		if err != nil {
			return nil, err
		}
		c.store(fetchCtx, key, ks, v, started)
		return v, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("%w: %s", ErrTypeMismatch, ks)
		}
		return v, nil
	}
}

func lookup[T any](c *Cache, ks string, staleTime time.Duration) (T, bool, error) {
	var zero T
	now := c.now()
	c.mu.RLock()
	e, ok := c.entries[ks]
	var (
		value     any
		updatedAt time.Time
		stale     bool
	)
	if ok {
		value, updatedAt, stale = e.value, e.updatedAt, e.stale
		e.lastUsed.Store(now.UnixNano())
	}
	c.mu.RUnlock()
	if !ok || stale || now.Sub(updatedAt) >= staleTime {
		return zero, false, nil
	}
	v, ok := value.(T)
	if !ok {
		return zero, false, fmt.Errorf("%w: %s", ErrTypeMismatch, ks)
	}
	return v, true, nil
}

func loadBackend[T any](ctx context.Context, c *Cache, key Key, ks string, staleTime time.Duration) (T, bool) {
	var zero T
	if c.backend == nil {
		return zero, false
	}
	c.mu.RLock()
	e, known := c.entries[ks]
	locallyStale := known && e.stale
	c.mu.RUnlock()
	if locallyStale {
		return zero, false
	}
	rec, ok, err := c.backend.Load(ctx, key)
	if err != nil {
		c.logger.Warn("query backend load", slog.String("key", ks), slog.Any("error", err))
		return zero, false
	}
	if !ok || c.now().Sub(rec.UpdatedAt) >= staleTime {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(rec.Payload, &v); err != nil {
		c.logger.Warn("query backend decode", slog.String("key", ks), slog.Any("error", err))
		return zero, false
	}
	c.mu.Lock()
	c.entries[ks] = newEntry(key, v, rec.UpdatedAt, false, c.now())
	c.mu.Unlock()
	return v, true
}

func (c *Cache) store(ctx context.Context, key Key, ks string, v any, started uint64) {
	now := c.now()
	c.mu.Lock()
	stale := c.invalidated[ks] > started
	c.entries[ks] = newEntry(key, v, now, stale, now)
	collect := now.Sub(c.lastGC) >= c.gcTime/2
	c.mu.Unlock()
	if collect {
		c.Collect()
	}

	if c.backend == nil || stale {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("query backend encode", slog.String("key", ks), slog.Any("error", err))
		return
	}
	if err := c.backend.Save(ctx, key, Record{Payload: payload, UpdatedAt: now}); err != nil {
		c.logger.Warn("query backend save", slog.String("key", ks), slog.Any("error", err))
	}
}

// begin registers a running fetch and returns the invalidation sequence it
// started at.
func (c *Cache) begin(key Key, ks string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.inflight[ks]
	f.key = key
	f.count++
	c.inflight[ks] = f
	return c.seq
}

func (c *Cache) end(ks string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.inflight[ks]
	f.count--
	if f.count <= 0 {
		delete(c.inflight, ks)
		delete(c.invalidated, ks)
		return
	}
	c.inflight[ks] = f
}

// Invalidate marks every entry under prefix stale, so the next Fetch goes to
// the backend. In-flight fetches under prefix are detached: later Fetches
// start a new call and the detached result lands already stale.
func (c *Cache) Invalidate(ctx context.Context, prefix Key) {
	c.invalidateLocal(prefix)
	if c.backend != nil {
		if err := c.backend.Invalidate(ctx, prefix); err != nil {
			c.logger.Warn("query backend invalidate", slog.String("prefix", prefix.String()), slog.Any("error", err))
		}
	}
}

func (c *Cache) invalidateLocal(prefix Key) {
	c.mu.Lock()
	c.seq++
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.stale = true
		}
	}
	for ks, f := range c.inflight {
		if f.key.HasPrefix(prefix) {
			c.invalidated[ks] = c.seq
			c.group.Forget(ks)
		}
	}
	subs := c.subscribersLocked()
	c.mu.Unlock()
	for _, fn := range subs {
		fn(prefix)
	}
}

// Remove evicts key entirely.
func (c *Cache) Remove(ctx context.Context, key Key) {
	c.removeLocal(key)
	if c.backend != nil {
		if err := c.backend.Remove(ctx, key); err != nil {
			c.logger.Warn("query backend remove", slog.String("key", key.String()), slog.Any("error", err))
		}
	}
}

func (c *Cache) removeLocal(key Key) {
	ks := key.String()
	c.mu.Lock()
	c.seq++
	delete(c.entries, ks)
	if _, ok := c.inflight[ks]; ok {
		c.invalidated[ks] = c.seq
		c.group.Forget(ks)
	}
	subs := c.subscribersLocked()
	c.mu.Unlock()
	for _, fn := range subs {
		fn(key)
	}
}

// OnInvalidate registers fn to be called with the prefix of every
// invalidation or the key of every removal, local or received from the
// backend. The returned func unregisters it.
func (c *Cache) OnInvalidate(fn func(Key)) func() {
	c.mu.Lock()
	c.subID++
	id := c.subID
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Cache) subscribersLocked() []func(Key) {
	if len(c.subs) == 0 {
		return nil
	}
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(Key), 0, len(ids))
	for _, id := range ids {
		out = append(out, c.subs[id])
	}
	return out
}

// Collect drops entries that have not been read within the GC window and
// have no fetch in flight. It runs on its own after stores; calling it
// directly is for callers that want memory back sooner.
func (c *Cache) Collect() int {
	now := c.now()
	cutoff := now.Add(-c.gcTime).UnixNano()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastGC = now
	dropped := 0
	for ks, e := range c.entries {
		if _, busy := c.inflight[ks]; busy {
			continue
		}
		if e.lastUsed.Load() <= cutoff {
			delete(c.entries, ks)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Peek returns the cached value for key regardless of staleness.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// IsStale reports whether key is missing or marked stale.
func (c *Cache) IsStale(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	return !ok || e.stale
}
