package resource

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/qcm-suite/qcm/internal/notify"
	"github.com/qcm-suite/qcm/internal/platform/apiclient"
	"github.com/qcm-suite/qcm/internal/query"
)

// Mutations are the writes of one entity. A successful write invalidates the
// affected cache keys and notifies; a failed one only notifies.
type Mutations[T, In any] struct {
	def      Definition
	service  *Service[T]
	queries  *Queries[T]
	cache    *query.Cache
	notifier notify.Notifier
	validate *validator.Validate
	logger   *slog.Logger
}

func NewMutations[T, In any](def Definition, service *Service[T], queries *Queries[T], cache *query.Cache, notifier notify.Notifier, v *validator.Validate, logger *slog.Logger) *Mutations[T, In] {
	if notifier == nil {
		notifier = notify.Discard
	}
	if v == nil {
		v = NewValidator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutations[T, In]{
		def:      def,
		service:  service,
		queries:  queries,
		cache:    cache,
		notifier: notifier,
		validate: v,
		logger:   logger,
	}
}

func (m *Mutations[T, In]) Create(ctx context.Context, in In) (T, error) {
	var zero T
	if err := validate(m.validate, in); err != nil {
		m.failed(ctx, "create", err)
		return zero, err
	}
	out, err := m.service.Create(ctx, in)
	if err != nil {
		m.failed(ctx, "create", err)
		return zero, err
	}
	m.invalidate(ctx, m.queries.ListPrefix())
	m.notifier.Success(ctx, m.def.label()+" created", "")
	return out, nil
}

func (m *Mutations[T, In]) Update(ctx context.Context, id int64, in In) (T, error) {
	var zero T
	if id <= 0 {
		err := &ValidationError{Fields: map[string]string{"id": "must be greater than 0"}}
		m.failed(ctx, "update", err)
		return zero, err
	}
	if err := validate(m.validate, in); err != nil {
		m.failed(ctx, "update", err)
		return zero, err
	}
	out, err := m.service.Update(ctx, id, in)
	if err != nil {
		m.failed(ctx, "update", err)
		return zero, err
	}
	m.invalidate(ctx, m.queries.ListPrefix())
	m.invalidate(ctx, m.queries.DetailKey(id))
	m.notifier.Success(ctx, m.def.label()+" updated", "")
	return out, nil
}

func (m *Mutations[T, In]) Delete(ctx context.Context, id int64) (Message, error) {
	if id <= 0 {
		err := &ValidationError{Fields: map[string]string{"id": "must be greater than 0"}}
		m.failed(ctx, "delete", err)
		return Message{}, err
	}
	msg, err := m.service.Delete(ctx, id)
	if err != nil {
		m.failed(ctx, "delete", err)
		return Message{}, err
	}
	m.invalidate(ctx, m.queries.ListPrefix())
	if m.cache != nil {
		m.cache.Remove(context.WithoutCancel(ctx), m.queries.DetailKey(id))
	}
	m.notifier.Success(ctx, m.def.label()+" deleted", msg.Message)
	return msg, nil
}

func (m *Mutations[T, In]) invalidate(ctx context.Context, prefix query.Key) {
	if m.cache == nil {
		return
	}
	m.cache.Invalidate(context.WithoutCancel(ctx), prefix)
}

func (m *Mutations[T, In]) failed(ctx context.Context, op string, err error) {
	m.notifier.Error(ctx, m.def.label()+" "+op+" failed", Describe(err))
}

// Describe renders err as a short operator-facing message.
func Describe(err error) string {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return http.StatusText(apiErr.Status)
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, ErrValidation):
		return err.Error()
	}
	return "request failed"
}
