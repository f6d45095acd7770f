package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/qcm-suite/qcm/internal/platform/storage"
)

const persistTimeout = 2 * time.Second

// persisted is the subset of State kept across reloads. The page is left
// out on purpose: a reload always starts on page one.
type persisted struct {
	Search         string            `json:"search,omitempty"`
	PerPage        int               `json:"per_page,omitempty"`
	Status         string            `json:"status,omitempty"`
	CreatedAtOrder Order             `json:"created_at_order,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
}

func projection(s State) persisted {
	return persisted{
		Search:         s.Search,
		PerPage:        s.PerPage,
		Status:         s.Status,
		CreatedAtOrder: s.CreatedAtOrder,
		Fields:         s.Clone().Fields,
	}
}

// Persist hydrates store from kv and keeps kv updated on every change that
// touches a persisted field. It is a no-op when the spec has no StorageKey.
// The returned function stops persisting.
func Persist(ctx context.Context, store *Store, kv storage.Store, logger *slog.Logger) (func(), error) {
	key := store.spec.StorageKey
	if key == "" || kv == nil {
		return func() {}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("filter", store.spec.Name))

	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("filter: load %s: %w", key, err)
	}
	if ok && raw != "" {
		var saved persisted
		if err := json.Unmarshal([]byte(raw), &saved); err != nil {
			logger.Warn("discard persisted filter", slog.Any("error", err))
		} else {
			store.restore(func(st *State) {
				st.Search = saved.Search
				if saved.PerPage > 0 {
					st.PerPage = store.clampPerPage(saved.PerPage)
				}
				st.Status = saved.Status
				st.CreatedAtOrder = saved.CreatedAtOrder
				for name, value := range saved.Fields {
					if store.knows(name) {
						setField(st, name, value)
					}
				}
			})
		}
	}

	base := context.WithoutCancel(ctx)
	unsubscribe := store.Subscribe(func(prev, next State) {
		if prev.EqualIgnoringPage(next) {
			return
		}
		payload, err := json.Marshal(projection(next))
		if err != nil {
			logger.Error("encode filter", slog.Any("error", err))
			return
		}
		saveCtx, cancel := context.WithTimeout(base, persistTimeout)
		defer cancel()
		if err := kv.Set(saveCtx, key, string(payload)); err != nil {
			logger.Warn("persist filter", slog.Any("error", err))
		}
	})
	return unsubscribe, nil
}
