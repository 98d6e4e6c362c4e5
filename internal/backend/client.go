package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"water-admin/internal/logger"
	"water-admin/internal/metrics"
)

const maxResponseBytes = 8 << 20

// ResponseCache is an optional read-through store for GET bodies.
type ResponseCache interface {
	Get(ctx context.Context, token, url string) ([]byte, bool)
	Set(ctx context.Context, token, url string, body []byte)
	Invalidate(ctx context.Context, token string)
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
	Cache      ResponseCache
}

// Client talks to the remote REST API on behalf of a signed-in user. Every
// call forwards the user's bearer token. Failed calls are not retried.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	cache      ResponseCache
}

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("%w: base url is required", ErrInvalidArgument)
	}
	parsed, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be absolute", ErrInvalidArgument, opts.BaseURL)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    parsed,
		httpClient: httpClient,
		userAgent:  opts.UserAgent,
		cache:      opts.Cache,
	}, nil
}

type requestSpec struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     interface{}
}

type freshReadKey struct{}

// FreshRead marks ctx so reads skip the cached copy. The fresh body still
// refreshes the cache.
func FreshRead(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshReadKey{}, true)
}

func IsFreshRead(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshReadKey{}).(bool)
	return fresh
}

func (c *Client) get(ctx context.Context, token string, spec requestSpec) ([]byte, error) {
	spec.method = http.MethodGet
	requestURL := c.buildURL(spec.path, spec.query)

	if c.cache != nil && !IsFreshRead(ctx) {
		if body, ok := c.cache.Get(ctx, token, requestURL); ok {
			return body, nil
		}
	}
	body, err := c.do(ctx, token, spec, requestURL)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(ctx, token, requestURL, body)
	}
	return body, nil
}

// mutate sends a write and drops the caller's cached reads so the follow-up
// re-fetch sees the new state.
func (c *Client) mutate(ctx context.Context, token string, spec requestSpec) ([]byte, error) {
	if spec.method == "" {
		spec.method = http.MethodPost
	}
	body, err := c.do(ctx, token, spec, c.buildURL(spec.path, spec.query))
	if c.cache != nil {
		c.cache.Invalidate(ctx, token)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, token string, spec requestSpec, requestURL string) ([]byte, error) {
	if ctx == nil {
		return nil, ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var payload io.Reader
	if spec.body != nil {
		encoded, err := json.Marshal(spec.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", spec.endpoint, err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, requestURL, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(spec.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(spec.endpoint, "transport_error").Inc()
		logger.FromContext(ctx).Warn().Err(err).Str("endpoint", spec.endpoint).Msg("backend request failed")
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, spec.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(spec.endpoint, "read_error").Inc()
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, spec.endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.BackendRequestsTotal.WithLabelValues(spec.endpoint, fmt.Sprintf("%dxx", resp.StatusCode/100)).Inc()
		apiErr := &APIError{StatusCode: resp.StatusCode, Detail: parseErrorDetail(body)}
		logger.FromContext(ctx).Warn().
			Int("status", resp.StatusCode).
			Str("endpoint", spec.endpoint).
			Str("detail", apiErr.Detail).
			Msg("backend rejected request")
		return nil, apiErr
	}
	metrics.BackendRequestsTotal.WithLabelValues(spec.endpoint, "ok").Inc()
	return body, nil
}

func (c *Client) buildURL(pathSuffix string, query url.Values) string {
	base := *c.baseURL
	base.Path = joinURLPath(base.Path, pathSuffix)
	if len(query) > 0 {
		base.RawQuery = query.Encode()
	}
	return base.String()
}

func joinURLPath(basePath string, suffix string) string {
	basePath = strings.TrimSuffix(basePath, "/")
	suffix = strings.TrimPrefix(suffix, "/")

	if basePath == "" {
		return "/" + suffix
	}
	if suffix == "" {
		return basePath
	}
	return basePath + "/" + suffix
}

// Ping checks that the backend answers at all. Any response below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String(), nil)
	if err != nil {
		return err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 500 {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

// decodeList accepts a bare array or a {"data": [...]} / {"results": [...]}
// envelope. null and an empty body decode to an empty list.
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}

	raw := json.RawMessage(body)
	if body[0] == '{' {
		var envelope struct {
			Data    json.RawMessage `json:"data"`
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
		}
		switch {
		case len(envelope.Data) > 0:
			raw = envelope.Data
		case len(envelope.Results) > 0:
			raw = envelope.Results
		default:
			return nil, fmt.Errorf("%w: object without data or results", ErrUnexpectedPayload)
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return []T{}, nil
		}
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// decodeObject accepts a bare object or a {"data": {...}} envelope.
func decodeObject[T any](body []byte) (T, error) {
	var out T
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return out, fmt.Errorf("%w: empty body", ErrUnexpectedPayload)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope) == 1 {
		if data, ok := envelope["data"]; ok {
			body = data
		}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	return out, nil
}

// IsNotFound reports a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
