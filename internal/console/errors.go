package console

import (
	"context"
	"errors"
	"net/http"

	"github.com/qcm-suite/qcm/internal/filter"
	"github.com/qcm-suite/qcm/internal/masterdata/shared"
	"github.com/qcm-suite/qcm/internal/platform/apiclient"
	"github.com/qcm-suite/qcm/internal/platform/httpx"
	"github.com/qcm-suite/qcm/internal/resource"
	"github.com/qcm-suite/qcm/internal/screen"
)

// fail maps domain and upstream errors onto problem responses.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.RespondError(w, h.classify(w, r, err))
}

func (h *Handler) classify(w http.ResponseWriter, r *http.Request, err error) error {
	var (
		verr   *resource.ValidationError
		apiErr *apiclient.APIError
		se     *httpx.StatusError
	)
	switch {
	case errors.As(err, &se):
		return err
	case errors.As(err, &verr):
		return &httpx.StatusError{Status: http.StatusBadRequest, Title: "Validation Failed", Err: err, Fields: verr.Fields}
	case errors.Is(err, screen.ErrDecode),
		errors.Is(err, filter.ErrUnknownField),
		errors.Is(err, filter.ErrInvalidNumber),
		errors.Is(err, filter.ErrInvalidOrder),
		errors.Is(err, resource.ErrDetailDisabled),
		errors.Is(err, resource.ErrValidation):
		return &httpx.StatusError{Status: http.StatusBadRequest, Err: err}
	case errors.Is(err, shared.ErrUnknownEntity):
		return &httpx.StatusError{Status: http.StatusNotFound, Err: err}
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusUnauthorized {
			w.Header().Set("Location", h.loginPath)
		}
		return &httpx.StatusError{Status: apiErr.Status, Err: errors.New(resource.Describe(err))}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, httpx.ErrBadRequest):
		return err
	}
	h.logger.Error("console request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	return &httpx.StatusError{Status: http.StatusBadGateway, Err: errors.New("upstream unavailable")}
}
