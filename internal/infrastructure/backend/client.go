// Package backend is the HTTP client for the rental REST backend.
// It attaches the caller's bearer token, enforces an outbound rate limit,
// decodes the {status, message, data, meta} envelope and maps failures to
// domain errors. A 401 on any non-login call fires the unauthorized hook.
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

	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/rental/backoffice/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "rental-backoffice/1.0"
	maxErrorBody     = 64 << 10
)

// Config configures the backend client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	UserAgent string
}

// TokenFunc returns the bearer token for the request carried by ctx
type TokenFunc func(ctx context.Context) string

// Option configures a Client
type Option func(*Client)

// WithTokenFunc sets how the bearer token is resolved for resource calls
func WithTokenFunc(fn TokenFunc) Option {
	return func(c *Client) { c.token = fn }
}

// WithUnauthorizedHandler sets the hook fired on a 401 reply
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithMetrics records request counts and latencies
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client talks to the rental backend. It never retries.
type Client struct {
	http           *http.Client
	baseURL        *url.URL
	userAgent      string
	limiter        *rate.Limiter
	token          TokenFunc
	onUnauthorized func(ctx context.Context)
	metrics        *Metrics
	logger         *zap.Logger
}

// New creates a backend client
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	c := &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:   base,
		userAgent: cfg.UserAgent,
		token:     func(context.Context) string { return "" },
		logger:    zap.NewNop(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// request is one backend call
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// token overrides the TokenFunc when set
	token string
	// anonymous sends no Authorization header
	anonymous bool
	// noUnauthorizedHook suppresses the 401 hook, e.g. for a failed login
	noUnauthorizedHook bool
	// raw skips envelope decoding and returns the body as is
	raw bool
}

// response is a decoded backend reply
type response struct {
	status  int
	header  http.Header
	body    []byte
	message string
	data    json.RawMessage
	meta    *shared.PageMeta
}

// envelope is the backend's response wrapper
type envelope struct {
	Status  json.RawMessage  `json:"status"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Meta    *shared.PageMeta `json:"meta"`
	Errors  []fieldError     `json:"errors"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// failed reports an explicit "status": false (or "error") in the envelope
func (e envelope) failed() bool {
	s := strings.Trim(string(e.Status), `" `)
	return s == "false" || s == "error"
}

func (c *Client) do(ctx context.Context, req request) (*response, error) {
	endpoint := endpointLabel(req.path)
	ctx, span := telemetry.StartClientSpan(ctx, "backend "+req.method+" "+endpoint,
		attribute.String("http.request.method", req.method),
		attribute.String("url.template", endpoint),
	)
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			telemetry.RecordError(span, err)
			return nil, shared.WrapDomainError(shared.ErrBackendUnavailable.Code, shared.ErrBackendUnavailable.Message, err)
		}
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(req.method, endpoint, 0, elapsed)
		telemetry.RecordError(span, err)
		c.logger.Warn("Backend request failed",
			zap.String("method", req.method),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil, shared.WrapDomainError(shared.ErrBackendUnavailable.Code, shared.ErrBackendUnavailable.Message, err)
	}
	defer httpResp.Body.Close()

	c.metrics.observe(req.method, endpoint, httpResp.StatusCode, elapsed)
	span.SetAttributes(attribute.Int("http.response.status_code", httpResp.StatusCode))

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.WrapDomainError(shared.ErrBackendUnavailable.Code, shared.ErrBackendUnavailable.Message,
			fmt.Errorf("reading response body: %w", err))
	}

	resp := &response{status: httpResp.StatusCode, header: httpResp.Header, body: body}
	var env envelope
	if !req.raw || httpResp.StatusCode >= 400 {
		if len(bytes.TrimSpace(body)) > 0 && json.Unmarshal(body, &env) == nil {
			resp.message = env.Message
			resp.data = env.Data
			resp.meta = env.Meta
		}
	}

	if httpResp.StatusCode >= 400 || env.failed() {
		berr := c.mapError(resp, env)
		telemetry.RecordError(span, berr)
		if httpResp.StatusCode == http.StatusUnauthorized && !req.noUnauthorizedHook && c.onUnauthorized != nil {
			c.logger.Info("Backend rejected credentials, resetting session", zap.String("endpoint", endpoint))
			c.onUnauthorized(ctx)
		}
		return nil, berr
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, req request) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.raw {
		httpReq.Header.Set("Accept", "application/json")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	token := req.token
	if token == "" && !req.anonymous {
		token = c.token(ctx)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	telemetry.InjectHeaders(ctx, httpReq.Header)
	return httpReq, nil
}

func (c *Client) mapError(resp *response, env envelope) error {
	msg := resp.message
	if msg == "" && len(env.Errors) > 0 {
		msg = env.Errors[0].Message
	}
	cause := fmt.Errorf("backend status %d: %s", resp.status, truncate(resp.body, maxErrorBody))

	switch {
	case resp.status == http.StatusUnauthorized:
		return shared.WrapDomainError(shared.ErrBackendUnauthorized.Code, orDefault(msg, shared.ErrBackendUnauthorized.Message), cause)
	case resp.status == http.StatusNotFound:
		return shared.WrapDomainError(shared.ErrNotFound.Code, orDefault(msg, shared.ErrNotFound.Message), cause)
	case resp.status >= 500:
		return shared.WrapDomainError(shared.ErrBackendUnavailable.Code, shared.ErrBackendUnavailable.Message, cause)
	default:
		return shared.WrapDomainError(shared.ErrBackendRejected.Code, orDefault(msg, shared.ErrBackendRejected.Message), cause)
	}
}

// decode unmarshals the envelope's data, or the whole body when the reply
// is not enveloped
func decode[T any](resp *response) (*T, error) {
	raw := resp.data
	if len(raw) == 0 || string(raw) == "null" {
		raw = resp.body
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, shared.WrapDomainError(shared.ErrBackendUnavailable.Code, "Unexpected response from backend",
			fmt.Errorf("decoding response: %w", err))
	}
	return &out, nil
}

// decodePage unmarshals a paginated list reply
func decodePage[T any](resp *response) (*shared.Page[T], error) {
	items := []T{}
	if len(resp.data) > 0 && string(resp.data) != "null" {
		if err := json.Unmarshal(resp.data, &items); err != nil {
			return nil, shared.WrapDomainError(shared.ErrBackendUnavailable.Code, "Unexpected response from backend",
				fmt.Errorf("decoding list: %w", err))
		}
	}
	page := &shared.Page[T]{Items: items}
	if resp.meta != nil {
		page.Meta = *resp.meta
	} else {
		page.Meta = shared.NewPageMeta(int64(len(items)), 1, len(items))
	}
	return page, nil
}

// endpointLabel collapses numeric path segments so metrics and span names
// stay low-cardinality
func endpointLabel(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p != "" && strings.Trim(p, "0123456789") == "" {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}

// IsUnauthorized reports whether err is a backend 401
func IsUnauthorized(err error) bool {
	return errors.Is(err, shared.ErrBackendUnauthorized)
}
