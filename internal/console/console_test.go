package console_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcm-suite/qcm/internal/console"
	"github.com/qcm-suite/qcm/internal/masterdata"
	"github.com/qcm-suite/qcm/internal/notify"
	"github.com/qcm-suite/qcm/internal/platform/apiclient"
	"github.com/qcm-suite/qcm/internal/platform/storage"
	"github.com/qcm-suite/qcm/internal/query"
	"github.com/qcm-suite/qcm/internal/resource"
	"github.com/qcm-suite/qcm/internal/screen"
	"github.com/qcm-suite/qcm/jobs"
)

type backend struct {
	mu    sync.Mutex
	calls []string
	auth  []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls = append(b.calls, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/suppliers":
		_, _ = w.Write([]byte(`{"data":[{"id":7,"code":"SUP-7","name":"Acme"}],"pagination":{"current_page":1,"per_page":10,"total":1}}`))
	case r.Method == http.MethodGet && r.URL.Path == "/suppliers/7":
		_, _ = w.Write([]byte(`{"data":{"id":7,"code":"SUP-7","name":"Acme"}}`))
	case r.URL.Path == "/suppliers/401":
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/suppliers/"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Supplier not found"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/suppliers":
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":8,"code":"SUP-8","name":"Beta"}}`))
	case r.Method == http.MethodPatch && r.URL.Path == "/suppliers/7":
		_, _ = w.Write([]byte(`{"data":{"id":7,"code":"SUP-7","name":"Acme Ltd"}}`))
	case r.Method == http.MethodDelete && r.URL.Path == "/suppliers/7":
		_, _ = w.Write([]byte(`{"data":{"message":"Supplier deleted"}}`))
	default:
		_, _ = w.Write([]byte(`{"data":[]}`))
	}
}

func (b *backend) count(prefix string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type fakeWarmup struct {
	entities []string
}

func (f *fakeWarmup) EnqueueReferenceWarmup(_ context.Context, payload jobs.ReferenceWarmupPayload) (*asynq.TaskInfo, error) {
	f.entities = payload.Entities
	return &asynq.TaskInfo{ID: "task-1", Queue: "default"}, nil
}

type harness struct {
	srv     *httptest.Server
	api     *backend
	queue   *notify.Queue
	tokens  *apiclient.TokenStore
	warmup  *fakeWarmup
	handler *console.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := &backend{}
	upstream := httptest.NewServer(api)
	t.Cleanup(upstream.Close)

	kv := storage.NewMemory()
	tokens := apiclient.NewTokenStore(kv, "")
	client, err := apiclient.New(apiclient.Config{BaseURL: upstream.URL}, tokens)
	require.NoError(t, err)

	queue := notify.NewQueue(0)
	deps := resource.Deps{
		Client:   client,
		Cache:    query.NewCache(query.Options{}),
		Notifier: queue,
	}
	warmup := &fakeWarmup{}
	h := console.NewHandler(console.Config{
		Views:         masterdata.Screens(deps, screen.Options{KV: kv, Delay: 10 * time.Millisecond}),
		Notifications: queue,
		Tokens:        tokens,
		LoginPath:     "/login",
		Warmup:        warmup,
	})
	t.Cleanup(h.Close)

	r := chi.NewRouter()
	h.MountRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, api: api, queue: queue, tokens: tokens, warmup: warmup, handler: h}
}

func (h *harness) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, h.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestEntitiesListsCatalog(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodGet, "/entities", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, len(masterdata.Names()))
}

func TestUnknownEntityIsNotFound(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodGet, "/screens/widgets/", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	assert.Contains(t, body["detail"], "widgets")
}

func TestScreenStartsAndPatchesFilter(t *testing.T) {
	h := newHarness(t)

	require.Eventually(t, func() bool {
		_, body := h.do(t, http.MethodGet, "/screens/suppliers/", "")
		state, _ := body["state"].(map[string]any)
		return state["status"] == string(query.StatusSuccess)
	}, 2*time.Second, 10*time.Millisecond)

	resp, body := h.do(t, http.MethodPatch, "/screens/suppliers/filter", `{"search":"acme","page":"3","created_at_order":"asc"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "acme", body["search"])
	assert.EqualValues(t, 3, body["page"])
	assert.Equal(t, "ASC", body["created_at_order"])

	resp, body = h.do(t, http.MethodPost, "/screens/suppliers/filter/next", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 4, body["page"])

	resp, body = h.do(t, http.MethodPost, "/screens/suppliers/filter/reset", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["page"])
	assert.Equal(t, "", body["search"])
}

func TestPatchFilterRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	cases := map[string]string{
		"page":     `{"page":"abc"}`,
		"order":    `{"created_at_order":"sideways"}`,
		"field":    `{"fields":{"color":"red"}}`,
		"per_page": `{"per_page":500}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, _ := h.do(t, http.MethodPatch, "/screens/suppliers/filter", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestDetailAndErrors(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/screens/suppliers/items/7", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Acme", data["name"])

	resp, _ = h.do(t, http.MethodGet, "/screens/suppliers/items/0", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, "/screens/suppliers/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = h.do(t, http.MethodGet, "/screens/suppliers/items/9", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Supplier not found", body["detail"])
}

func TestUnauthorizedPointsAtLogin(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.tokens.Set(context.Background(), "stale"))

	resp, _ := h.do(t, http.MethodGet, "/screens/suppliers/items/401", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	token, err := h.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCreateValidatesAndNotifies(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodPost, "/screens/suppliers/items", `{"code":"","name":"Beta"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "code")
	assert.Zero(t, h.api.count("POST "))
	failed, ok := h.queue.Pop()
	require.True(t, ok)
	assert.Equal(t, notify.KindError, failed.Kind)
	assert.Equal(t, "Supplier create failed", failed.Title)

	resp, _ = h.do(t, http.MethodPost, "/screens/suppliers/items", `{"code":"SUP-8","name":"Beta","bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = h.do(t, http.MethodPost, "/screens/suppliers/items", `{"code":"SUP-8","name":"Beta"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Beta", body["data"].(map[string]any)["name"])

	resp, body = h.do(t, http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	toasts := body["data"].([]any)
	require.NotEmpty(t, toasts)
	assert.Equal(t, "Supplier created", toasts[len(toasts)-1].(map[string]any)["title"])
	assert.Zero(t, h.queue.Len())
}

func TestUpdateRoundTrip(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodGet, "/screens/suppliers/items/7", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := h.do(t, http.MethodPatch, "/screens/suppliers/items/7", `{"code":"SUP-7","name":"Acme Ltd"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Acme Ltd", body["data"].(map[string]any)["name"])
	assert.Equal(t, 1, h.api.count("PATCH /suppliers/7"))

	resp, _ = h.do(t, http.MethodGet, "/screens/suppliers/items/7", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, h.api.count("GET /suppliers/7"))

	resp, body = h.do(t, http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	toasts := body["data"].([]any)
	require.NotEmpty(t, toasts)
	assert.Equal(t, "Supplier updated", toasts[len(toasts)-1].(map[string]any)["title"])
}

func TestDeleteReturnsMessage(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodDelete, "/screens/suppliers/items/7", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Supplier deleted", body["data"].(map[string]any)["message"])
}

func TestSessionToken(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodPut, "/session/token", `{"token":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPut, "/session/token", `{"token":"abc"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, _ = h.do(t, http.MethodGet, "/screens/suppliers/items/7", "")
	h.api.mu.Lock()
	last := h.api.auth[len(h.api.auth)-1]
	h.api.mu.Unlock()
	assert.Equal(t, "Bearer abc", last)

	resp, _ = h.do(t, http.MethodDelete, "/session/token", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	token, err := h.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestEnqueueWarmup(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodPost, "/jobs/reference-warmup", `{"entities":["units"]}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "task-1", body["id"])
	assert.Equal(t, []string{"units"}, h.warmup.entities)
}
