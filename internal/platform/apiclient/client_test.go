package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcm-suite/qcm/internal/platform/apiclient"
	"github.com/qcm-suite/qcm/internal/platform/storage"
)

type recordingNavigator struct {
	calls atomic.Int32
	last  atomic.Value
}

func (n *recordingNavigator) Navigate(path string) {
	n.calls.Add(1)
	n.last.Store(path)
}

type countingRecorder struct {
	calls atomic.Int32
}

func (r *countingRecorder) ObserveAPIRequest(string, int, time.Duration) { r.calls.Add(1) }

func newClient(t *testing.T, handler http.HandlerFunc, opts ...apiclient.Option) (*apiclient.Client, *apiclient.TokenStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tokens := apiclient.NewTokenStore(storage.NewMemory(), "")
	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api"}, tokens, opts...)
	require.NoError(t, err)
	return client, tokens
}

func TestFilterFalsyParams(t *testing.T) {
	got := apiclient.FilterFalsyParams(map[string]any{"a": 1, "b": "", "c": nil, "d": (*string)(nil), "e": 0})
	assert.Equal(t, map[string]any{"a": 1, "e": 0}, got)
}

func TestFilterFalsyParamsKeepsFalseAndDerefsPointers(t *testing.T) {
	empty := ""
	zero := 0
	got := apiclient.FilterFalsyParams(map[string]any{"f": false, "p": &empty, "z": &zero})
	assert.Len(t, got, 2)
	assert.Contains(t, got, "f")
	assert.Contains(t, got, "z")
}

func TestEncodeQuery(t *testing.T) {
	zero := 0
	q := apiclient.EncodeQuery(map[string]any{"search": "", "page": 2, "per_page": &zero, "created_at_order": "DESC"})
	assert.Equal(t, "created_at_order=DESC&page=2&per_page=0", q.Encode())
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	_, err := apiclient.New(apiclient.Config{BaseURL: "/api"}, nil)
	require.Error(t, err)
	_, err = apiclient.New(apiclient.Config{}, nil)
	require.Error(t, err)
}

func TestGetAttachesHeadersAndStripsParams(t *testing.T) {
	var seen *http.Request
	client, tokens := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"data":[{"id":1}]}`))
	})
	require.NoError(t, tokens.Set(context.Background(), "secret"))

	var out struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	err := client.Get(context.Background(), "/suppliers", map[string]any{"search": "", "page": 1, "status": nil}, &out)
	require.NoError(t, err)

	require.NotNil(t, seen)
	assert.Equal(t, "/api/suppliers", seen.URL.Path)
	assert.Equal(t, "page=1", seen.URL.RawQuery)
	assert.Equal(t, "Bearer secret", seen.Header.Get("Authorization"))
	assert.Equal(t, "application/json", seen.Header.Get("Content-Type"))
	assert.NotEmpty(t, seen.Header.Get("X-Request-ID"))
	require.Len(t, out.Data, 1)
	assert.EqualValues(t, 1, out.Data[0].ID)
}

func TestRequestWithoutTokenIsUnauthenticated(t *testing.T) {
	var auth string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, client.Get(context.Background(), "/units", nil, nil))
	assert.Empty(t, auth)
}

func TestUnauthorizedClearsTokenAndNavigatesOnce(t *testing.T) {
	nav := &recordingNavigator{}
	client, tokens := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}, apiclient.WithNavigator(nav))
	ctx := context.Background()
	require.NoError(t, tokens.Set(ctx, "stale"))

	err := client.Get(ctx, "/suppliers", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apiclient.ErrUnauthorized))
	assert.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))
	assert.Contains(t, err.Error(), "token expired")

	token, err := tokens.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.EqualValues(t, 1, nav.calls.Load())
	assert.Equal(t, apiclient.DefaultLoginPath, nav.last.Load())

	_ = client.Get(ctx, "/suppliers", nil, nil)
	assert.EqualValues(t, 2, nav.calls.Load())
}

func TestNonAuthErrorsDoNotNavigate(t *testing.T) {
	nav := &recordingNavigator{}
	client, tokens := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"data":{"message":"name taken"}}`))
	}, apiclient.WithNavigator(nav))
	ctx := context.Background()
	require.NoError(t, tokens.Set(ctx, "keep"))

	err := client.Post(ctx, "/suppliers", apiclient.JSON(map[string]string{"name": "x"}), nil)
	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "name taken", apiErr.Message)
	assert.False(t, errors.Is(err, apiclient.ErrUnauthorized))

	token, _ := tokens.Token(ctx)
	assert.Equal(t, "keep", token)
	assert.Zero(t, nav.calls.Load())
}

func TestPatchSendsJSONBody(t *testing.T) {
	var method string
	var body map[string]string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"data":{"id":3}}`))
	})
	require.NoError(t, client.Patch(context.Background(), "/units/3", apiclient.JSON(map[string]string{"name": "kg"}), nil))
	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "kg", body["name"])
}

func TestMultipartBody(t *testing.T) {
	var fields map[string]string
	var fileContent string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fields = map[string]string{"lot_number": r.FormValue("lot_number"), "empty": r.FormValue("empty")}
		f, _, err := r.FormFile("attachment")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		raw, _ := io.ReadAll(f)
		fileContent = string(raw)
		_, _ = w.Write([]byte(`{"data":{"id":9}}`))
	})
	form := &apiclient.Form{
		Fields: map[string]string{"lot_number": "L-1", "empty": ""},
		Files:  []apiclient.File{{Field: "attachment", Name: "coa.pdf", Content: []byte("%PDF")}},
	}
	assert.True(t, strings.HasPrefix(form.ContentType(), "multipart/form-data; boundary="))
	require.NoError(t, client.Post(context.Background(), "/incoming-quality-checks", form, nil))
	assert.Equal(t, "L-1", fields["lot_number"])
	assert.Empty(t, fields["empty"])
	assert.Equal(t, "%PDF", fileContent)
}

func TestRecorderObservesRequests(t *testing.T) {
	rec := &countingRecorder{}
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, apiclient.WithRecorder(rec))
	err := client.Delete(context.Background(), "/plants/1", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apiclient.StatusCode(err))
	assert.EqualValues(t, 1, rec.calls.Load())
}
