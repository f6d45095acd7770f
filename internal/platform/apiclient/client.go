// Package apiclient is the single configured HTTP client every QC service call
// goes through. It attaches the bearer token, stamps request IDs and turns a
// 401 into a cleared session plus a redirect to the login route.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultLoginPath is where the session-expired redirect points.
const DefaultLoginPath = "/login"

// Navigator receives the login redirect after a 401.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Recorder observes completed backend calls. observability.Metrics satisfies it.
type Recorder interface {
	ObserveAPIRequest(method string, status int, duration time.Duration)
}

// Config describes the backend the client talks to.
type Config struct {
	BaseURL   string
	LoginPath string
	Timeout   time.Duration
}

// Client is the shared QC backend client.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    *TokenStore
	navigator Navigator
	recorder  Recorder
	logger    *slog.Logger
	loginPath string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithNavigator sets the redirect target used on 401 responses.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithRecorder attaches request metrics.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a Client for cfg.BaseURL.
func New(cfg Config, tokens *TokenStore, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("apiclient: base url required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: base url %q must be absolute", cfg.BaseURL)
	}
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: cfg.Timeout},
		tokens:    tokens,
		logger:    slog.Default(),
		loginPath: loginPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL reports the resolved backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Params map[string]any
	Body   Body
}

// Get issues a GET with falsy params stripped.
func (c *Client) Get(ctx context.Context, path string, params map[string]any, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Params: params}, out)
}

// Post issues a POST with body.
func (c *Client) Post(ctx context.Context, path string, body Body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Patch issues a PATCH with body.
func (c *Client) Patch(ctx context.Context, path string, body Body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// Do performs req and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(req.Method, 0, start)
		return err
	}
	defer resp.Body.Close()
	c.observe(req.Method, resp.StatusCode, start)

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("apiclient: read %s %s: %w", req.Method, req.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:  req.Method,
			Path:    req.Path,
			Status:  resp.StatusCode,
			Message: errorMessage(payload),
			Body:    payload,
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.expireSession(ctx)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("apiclient: decode %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.resolve(req.Path)
	if len(req.Params) > 0 {
		if q := EncodeQuery(req.Params); len(q) > 0 {
			target.RawQuery = q.Encode()
		}
	}

	var body io.Reader
	contentType := "application/json"
	if req.Body != nil {
		r, err := req.Body.Encode()
		if err != nil {
			return nil, err
		}
		body = r
		contentType = req.Body.ContentType()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build %s %s: %w", req.Method, req.Path, err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Warn("read auth token", slog.Any("error", err))
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

func (c *Client) resolve(path string) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return &u
}

// expireSession runs once per 401 response: the token is dropped and the
// navigator is pointed at the login route.
func (c *Client) expireSession(ctx context.Context) {
	if err := c.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		c.logger.Warn("clear auth token", slog.Any("error", err))
	}
	if c.navigator != nil {
		c.navigator.Navigate(c.loginPath)
	}
}

func (c *Client) observe(method string, status int, start time.Time) {
	if c.recorder == nil {
		return
	}
	c.recorder.ObserveAPIRequest(method, status, time.Since(start))
}

func errorMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Data    *struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Data != nil && body.Data.Message != "":
		return body.Data.Message
	default:
		return body.Error
	}
}
