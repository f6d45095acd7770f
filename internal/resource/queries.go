package resource

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/qcm-suite/qcm/internal/filter"
	"github.com/qcm-suite/qcm/internal/notify"
	"github.com/qcm-suite/qcm/internal/query"
)

// ErrDetailDisabled is returned by Detail for ids that cannot exist; no
// request is issued.
var ErrDetailDisabled = errors.New("resource: detail query disabled")

// Queries are the cached reads of one entity. A failed backend read
// notifies once, however many callers shared it.
type Queries[T any] struct {
	def         Definition
	service     *Service[T]
	cache       *query.Cache
	notifier    notify.Notifier
	listStale   time.Duration
	detailStale time.Duration
}

func NewQueries[T any](def Definition, service *Service[T], cache *query.Cache, notifier notify.Notifier, listStale, detailStale time.Duration) *Queries[T] {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Queries[T]{
		def:         def,
		service:     service,
		cache:       cache,
		notifier:    notifier,
		listStale:   listStale,
		detailStale: detailStale,
	}
}

// ListPrefix matches every list key of the entity.
func (q *Queries[T]) ListPrefix() query.Key {
	return query.Key{q.def.Name, "list"}
}

// ListKey derives the cache key of a filter state. Entity fields follow in
// name order. Unpaged lists leave paging out.
func (q *Queries[T]) ListKey(st filter.State) query.Key {
	key := query.Key{q.def.Name, "list", filter.NormalizeSearch(st.Search)}
	if q.def.Envelope != Unpaged {
		key = append(key, strconv.Itoa(st.Page), strconv.Itoa(st.PerPage))
	}
	key = append(key, st.Status, string(st.CreatedAtOrder))
	for _, name := range st.FieldNames() {
		key = append(key, name+"="+st.Fields[name])
	}
	return key
}

func (q *Queries[T]) DetailKey(id int64) query.Key {
	return query.Key{q.def.Name, "detail", strconv.FormatInt(id, 10)}
}

// List returns the page matching st, from cache when fresh.
func (q *Queries[T]) List(ctx context.Context, st filter.State) (Page[T], error) {
	params := st.Params()
	if q.def.Envelope == Unpaged {
		delete(params, "page")
		delete(params, "per_page")
	}
	return query.Fetch(ctx, q.cache, q.ListKey(st), q.listStale, func(ctx context.Context) (Page[T], error) {
		page, err := q.fetchList(ctx, params)
		if err != nil {
			q.failed(ctx, "list", err)
		}
		return page, err
	})
}

func (q *Queries[T]) fetchList(ctx context.Context, params map[string]any) (Page[T], error) {
	if q.def.Envelope == Unpaged {
		items, err := q.service.ListAll(ctx, params)
		if err != nil {
			return Page[T]{}, err
		}
		return singlePage(items), nil
	}
	return q.service.List(ctx, params)
}

// Detail returns one record. Non-positive ids yield ErrDetailDisabled.
func (q *Queries[T]) Detail(ctx context.Context, id int64) (T, error) {
	if id <= 0 {
		var zero T
		return zero, ErrDetailDisabled
	}
	return query.Fetch(ctx, q.cache, q.DetailKey(id), q.detailStale, func(ctx context.Context) (T, error) {
		v, err := q.service.Get(ctx, id)
		if err != nil {
			q.failed(ctx, "detail", err)
		}
		return v, err
	})
}

func (q *Queries[T]) failed(ctx context.Context, op string, err error) {
	q.notifier.Error(ctx, q.def.label()+" "+op+" failed", Describe(err))
}

// Watch keeps the list of store's current state fetched, refetching after
// invalidations of its key.
func (q *Queries[T]) Watch(store *filter.Store, opts query.WatchOptions) *query.Watch[Page[T]] {
	opts.Cache = q.cache
	opts.Key = q.ListKey
	return query.NewWatch(store, q.List, opts)
}
