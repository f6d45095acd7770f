package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/qcm-suite/qcm/internal/filter"
	"github.com/qcm-suite/qcm/internal/masterdata/shared"
	"github.com/qcm-suite/qcm/internal/platform/httpx"
	"github.com/qcm-suite/qcm/internal/screen"
)

type viewKey struct{}

func viewFrom(ctx context.Context) screen.View {
	v, _ := ctx.Value(viewKey{}).(screen.View)
	return v
}

func (h *Handler) withView(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "entity")
		view, ok := h.views[name]
		if !ok {
			h.fail(w, r, fmt.Errorf("%w: %q", shared.ErrUnknownEntity, name))
			return
		}
		if err := h.ensureStarted(name, view); err != nil {
			h.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), viewKey{}, view)))
	})
}

type screenResponse struct {
	Info  screen.Info     `json:"info"`
	State screen.Snapshot `json:"state"`
}

func (h *Handler) entities(w http.ResponseWriter, r *http.Request) {
	infos := make([]screen.Info, 0, len(h.names))
	for _, name := range h.names {
		infos = append(infos, h.views[name].Info())
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": infos})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	view := viewFrom(r.Context())
	httpx.JSON(w, http.StatusOK, screenResponse{Info: view.Info(), State: view.Snapshot()})
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, viewFrom(r.Context()).Filter())
}

// filterRequest accepts page numbers as JSON numbers or strings.
type filterRequest struct {
	Search         *string           `json:"search"`
	Page           json.RawMessage   `json:"page"`
	PerPage        json.RawMessage   `json:"per_page"`
	Status         *string           `json:"status"`
	CreatedAtOrder *string           `json:"created_at_order"`
	Fields         map[string]string `json:"fields"`
}

func (req filterRequest) patch(defaultPerPage int) (filter.Patch, error) {
	p := filter.Patch{Search: req.Search, Status: req.Status, Fields: req.Fields}
	if raw, ok, err := numberText(req.Page); err != nil {
		return p, err
	} else if ok {
		n, err := filter.ParsePage(raw)
		if err != nil {
			return p, fmt.Errorf("page: %w", err)
		}
		p.Page = &n
	}
	if raw, ok, err := numberText(req.PerPage); err != nil {
		return p, err
	} else if ok {
		n, err := filter.ParsePerPage(raw, defaultPerPage)
		if err != nil {
			return p, fmt.Errorf("per_page: %w", err)
		}
		p.PerPage = &n
	}
	if req.CreatedAtOrder != nil {
		order, err := filter.ParseOrder(*req.CreatedAtOrder)
		if err != nil {
			return p, err
		}
		p.CreatedAtOrder = &order
	}
	return p, nil
}

func numberText(raw json.RawMessage) (string, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false, fmt.Errorf("%w: %s", filter.ErrInvalidNumber, raw)
	}
	return n.String(), true, nil
}

func (h *Handler) patchFilter(w http.ResponseWriter, r *http.Request) {
	view := viewFrom(r.Context())
	var req filterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := req.patch(view.Filter().PerPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := view.PatchFilter(p); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view.Filter())
}

func (h *Handler) resetFilter(w http.ResponseWriter, r *http.Request) {
	view := viewFrom(r.Context())
	view.ResetFilter()
	httpx.JSON(w, http.StatusOK, view.Filter())
}

func (h *Handler) nextPage(w http.ResponseWriter, r *http.Request) {
	view := viewFrom(r.Context())
	view.NextPage()
	httpx.JSON(w, http.StatusOK, view.Filter())
}

func (h *Handler) prevPage(w http.ResponseWriter, r *http.Request) {
	view := viewFrom(r.Context())
	view.PrevPage()
	httpx.JSON(w, http.StatusOK, view.Filter())
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	view := viewFrom(r.Context())
	view.Refresh()
	httpx.JSON(w, http.StatusAccepted, view.Snapshot())
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := viewFrom(r.Context()).Detail(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": item})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := viewFrom(r.Context()).Create(r.Context(), raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": item})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	raw, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := viewFrom(r.Context()).Update(r.Context(), id, raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": item})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	msg, err := viewFrom(r.Context()).Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": msg})
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", httpx.ErrBadRequest, raw)
	}
	return id, nil
}

func readBody(r *http.Request) (json.RawMessage, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, httpx.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &httpx.StatusError{Status: http.StatusRequestEntityTooLarge, Err: err}
		}
		return nil, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty body", httpx.ErrBadRequest)
	}
	return raw, nil
}
