package resource

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/qcm-suite/qcm/internal/platform/apiclient"
)

// Service issues the raw REST calls of one entity. Failures are logged and
// returned unchanged.
type Service[T any] struct {
	client *apiclient.Client
	def    Definition
	logger *slog.Logger
}

func NewService[T any](client *apiclient.Client, def Definition, logger *slog.Logger) *Service[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service[T]{client: client, def: def, logger: logger.With("entity", def.Name)}
}

func (s *Service[T]) path(id int64) string {
	if id == 0 {
		return s.def.Path
	}
	return s.def.Path + "/" + strconv.FormatInt(id, 10)
}

// List fetches one page.
func (s *Service[T]) List(ctx context.Context, params map[string]any) (Page[T], error) {
	var out Page[T]
	if err := s.client.Get(ctx, s.path(0), params, &out); err != nil {
		return Page[T]{}, s.fail("list", err)
	}
	if out.Data == nil {
		out.Data = []T{}
	}
	return out, nil
}

// ListAll fetches an unpaged collection.
func (s *Service[T]) ListAll(ctx context.Context, params map[string]any) ([]T, error) {
	var out Collection[T]
	if err := s.client.Get(ctx, s.path(0), params, &out); err != nil {
		return nil, s.fail("list", err)
	}
	if out.Data == nil {
		out.Data = []T{}
	}
	return out.Data, nil
}

func (s *Service[T]) Get(ctx context.Context, id int64) (T, error) {
	var out Item[T]
	if err := s.client.Get(ctx, s.path(id), nil, &out); err != nil {
		var zero T
		return zero, s.fail("get", err)
	}
	return out.Data, nil
}

func (s *Service[T]) Create(ctx context.Context, in any) (T, error) {
	var out Item[T]
	body, err := s.body(in)
	if err != nil {
		return out.Data, s.fail("create", err)
	}
	if err := s.client.Post(ctx, s.path(0), body, &out); err != nil {
		return out.Data, s.fail("create", err)
	}
	return out.Data, nil
}

// Update sends a PATCH with the changed fields.
func (s *Service[T]) Update(ctx context.Context, id int64, in any) (T, error) {
	var out Item[T]
	body, err := s.body(in)
	if err != nil {
		return out.Data, s.fail("update", err)
	}
	if err := s.client.Patch(ctx, s.path(id), body, &out); err != nil {
		return out.Data, s.fail("update", err)
	}
	return out.Data, nil
}

func (s *Service[T]) Delete(ctx context.Context, id int64) (Message, error) {
	var out Message
	if err := s.client.Delete(ctx, s.path(id), &out); err != nil {
		return Message{}, s.fail("delete", err)
	}
	return out, nil
}

func (s *Service[T]) body(in any) (apiclient.Body, error) {
	if m, ok := in.(apiclient.Multiparter); ok && s.def.Multipart {
		form, err := m.Multipart()
		if err != nil {
			return nil, fmt.Errorf("resource: build %s form: %w", s.def.Name, err)
		}
		return form, nil
	}
	return apiclient.JSON(in), nil
}

func (s *Service[T]) fail(op string, err error) error {
	s.logger.Error("api request failed", "op", op, "path", s.def.Path, "error", err)
	return err
}
