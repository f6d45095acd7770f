package console

import (
	"net/http"
	"strings"

	"github.com/qcm-suite/qcm/internal/platform/httpx"
	"github.com/qcm-suite/qcm/jobs"
)

type tokenRequest struct {
	Token string `json:"token"`
}

func (h *Handler) drainNotifications(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"data": h.notifications.Drain()})
}

func (h *Handler) setToken(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil {
		httpx.Problem(w, http.StatusNotImplemented, "Not Implemented", "token storage is not configured")
		return
	}
	var req tokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "token is required")
		return
	}
	if err := h.tokens.Set(r.Context(), token); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearToken(w http.ResponseWriter, r *http.Request) {
	if err := h.tokens.Clear(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) enqueueWarmup(w http.ResponseWriter, r *http.Request) {
	var req jobs.ReferenceWarmupPayload
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	info, err := h.warmup.EnqueueReferenceWarmup(r.Context(), req)
	if err != nil {
		h.logger.Error("enqueue reference warmup", "error", err)
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "job queue unavailable")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"id": info.ID, "queue": info.Queue})
}
