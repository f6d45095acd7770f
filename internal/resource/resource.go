package resource

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/qcm-suite/qcm/internal/filter"
	"github.com/qcm-suite/qcm/internal/notify"
	"github.com/qcm-suite/qcm/internal/platform/apiclient"
	"github.com/qcm-suite/qcm/internal/query"
)

const (
	DefaultListStaleTime      = 30 * time.Second
	DefaultReferenceStaleTime = 5 * time.Minute
	DefaultDetailStaleTime    = 30 * time.Second
)

// Deps are the collaborators shared by every entity.
type Deps struct {
	Client   *apiclient.Client
	Cache    *query.Cache
	Notifier notify.Notifier
	Validate *validator.Validate
	Logger   *slog.Logger

	ListStale      time.Duration
	ReferenceStale time.Duration
	DetailStale    time.Duration
}

// Resource bundles the layers of one entity. T is the record, In the
// create/update input.
type Resource[T, In any] struct {
	Definition Definition
	Service    *Service[T]
	Queries    *Queries[T]
	Mutations  *Mutations[T, In]
}

// New wires the layers of def over deps.
func New[T, In any](def Definition, deps Deps) *Resource[T, In] {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	listStale := def.StaleTime
	if listStale <= 0 {
		if def.Envelope == Unpaged {
			listStale = orDefault(deps.ReferenceStale, DefaultReferenceStaleTime)
		} else {
			listStale = orDefault(deps.ListStale, DefaultListStaleTime)
		}
	}
	detailStale := orDefault(deps.DetailStale, DefaultDetailStaleTime)
	if deps.Cache == nil {
		deps.Cache = query.NewCache(query.Options{Logger: logger})
	}

	svc := NewService[T](deps.Client, def, logger)
	queries := NewQueries(def, svc, deps.Cache, deps.Notifier, listStale, detailStale)
	return &Resource[T, In]{
		Definition: def,
		Service:    svc,
		Queries:    queries,
		Mutations:  NewMutations[T, In](def, svc, queries, deps.Cache, deps.Notifier, deps.Validate, logger),
	}
}

// NewStore returns a fresh filter store for the entity.
func (r *Resource[T, In]) NewStore() *filter.Store {
	return filter.NewStore(r.Definition.FilterSpec())
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
