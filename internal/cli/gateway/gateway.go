// Package gateway is the single HTTP client every command goes through. It
// resolves relative paths against one backend origin, encodes JSON (or
// multipart for uploads), runs the interceptor chain and normalizes failures
// into *HTTPError.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Gateway represents the configured HTTP client for the backend API
type Gateway struct {
	baseURL      *url.URL
	httpClient   *http.Client
	timeout      *time.Duration
	interceptors []Interceptor
	logger       zerolog.Logger
}

// Option configures a Gateway
type Option func(*Gateway)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(g *Gateway) {
		g.httpClient = httpClient
	}
}

// WithTimeout sets a per-request timeout. Zero disables it. It applies to the
// client given by WithHTTPClient regardless of option order; that client is
// copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = &d
	}
}

// WithInterceptors appends interceptors to the chain
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(g *Gateway) {
		g.interceptors = append(g.interceptors, interceptors...)
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New creates a gateway for the backend rooted at baseURL
func New(baseURL string, opts ...Option) (*Gateway, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}
	// Relative paths resolve under the base only if it ends with a slash
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	g := &Gateway{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(g)
	}
	if g.timeout != nil {
		c := *g.httpClient
		c.Timeout = *g.timeout
		g.httpClient = &c
	}

	return g, nil
}

// BaseURL returns the resolved backend origin
func (g *Gateway) BaseURL() string {
	return g.baseURL.String()
}

// URL resolves a path against the base URL. A leading slash is ignored so that
// "/core/login/" and "core/login/" address the same endpoint.
func (g *Gateway) URL(path string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return g.baseURL.ResolveReference(ref).String(), nil
}

// Do sends a JSON request. A nil body sends no body; a nil out discards the
// response body.
func (g *Gateway) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := g.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return g.send(req, path, out)
}

// Get is Do with GET and no body
func (g *Gateway) Get(ctx context.Context, path string, out any) error {
	return g.Do(ctx, http.MethodGet, path, nil, out)
}

// Post is Do with POST
func (g *Gateway) Post(ctx context.Context, path string, body, out any) error {
	return g.Do(ctx, http.MethodPost, path, body, out)
}

// Patch is Do with PATCH
func (g *Gateway) Patch(ctx context.Context, path string, body, out any) error {
	return g.Do(ctx, http.MethodPatch, path, body, out)
}

// File is one file part of a multipart upload
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

// Upload sends a multipart/form-data request, overriding the JSON content type
func (g *Gateway) Upload(ctx context.Context, method, path string, fields map[string]string, files []File, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	// Stable field order keeps requests reproducible
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := mw.WriteField(name, fields[name]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return fmt.Errorf("failed to create file part %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("failed to copy file %s: %w", f.Name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := g.newRequest(ctx, method, path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return g.send(req, path, out)
}

func (g *Gateway) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	target, err := g.URL(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (g *Gateway) send(req *http.Request, path string, out any) error {
	req, err := chain(req, g.interceptors)
	if err != nil {
		return fmt.Errorf("failed to prepare request: %w", err)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Debug().
			Str("method", req.Method).
			Str("path", path).
			Err(err).
			Msg("Request failed")
		return &HTTPError{Method: req.Method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &HTTPError{Method: req.Method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	g.logger.Debug().
		Str("method", req.Method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Msg("Request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(req.Method, path, resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
