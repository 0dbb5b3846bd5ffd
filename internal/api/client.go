package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cockpit/internal/platform/metrics"
	dErrors "cockpit/pkg/domain-errors"
)

// Header names for opt-in tenant context and request correlation.
const (
	HeaderTenantID  = "X-Tenant-ID"
	HeaderProjectID = "X-Project-ID"
	HeaderRequestID = "X-Request-ID"
)

// maxResponseBytes bounds response bodies read into memory.
const maxResponseBytes = 16 << 20

// Refresher renews the session. The client calls it exactly once per request
// on a 401 before replaying; concurrent callers are expected to share one
// in-flight refresh (see the session coordinator).
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Client executes requests against the dashboard backend and returns either
// the unwrapped payload or a classified error. Credentials travel in the
// cookie jar; the client never reads or stores the raw secret.
type Client struct {
	baseURL    string
	http       *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	refresher  Refresher
	maxRetries int
	retryBase  time.Duration
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRefresher wires the session coordinator's refresh entry point into the
// reactive 401 path.
func WithRefresher(r Refresher) Option {
	return func(c *Client) { c.refresher = r }
}

func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

func WithRetryBase(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryBase = d
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. The caller owns cookie
// jar setup in that case.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "base URL required")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "creating cookie jar")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		logger:     slog.Default(),
		tracer:     otel.Tracer("cockpit/api"),
		maxRetries: 3,
		retryBase:  500 * time.Millisecond,
		userAgent:  "cockpit-client/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetRefresher installs the refresher after construction. The session
// coordinator is built on top of the client, so the two cannot be wired in a
// single step. Call before the client is shared between goroutines.
func (c *Client) SetRefresher(r Refresher) { c.refresher = r }

// requestOptions is the per-request opt-in surface.
type requestOptions struct {
	tenantID    string
	projectID   string
	refreshCall bool
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

// WithTenantContext attaches the tenant identifier header. Context is never
// inferred from stored state; callers pass identifiers derived from the
// current URL.
func WithTenantContext(tenantID string) RequestOption {
	return func(o *requestOptions) { o.tenantID = tenantID }
}

// WithProjectContext attaches both tenant and project identifier headers.
func WithProjectContext(tenantID, projectID string) RequestOption {
	return func(o *requestOptions) {
		o.tenantID = tenantID
		o.projectID = projectID
	}
}

// AsRefreshCall marks the request as the refresh call itself so a 401 never
// triggers a recursive refresh. Only the session coordinator uses this.
func AsRefreshCall() RequestOption {
	return func(o *requestOptions) { o.refreshCall = true }
}

// Get executes a GET request and unmarshals the envelope's data field into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	data, _, err := c.do(ctx, http.MethodGet, path, nil, opts...)
	if err != nil {
		return err
	}
	return unmarshalPayload(data, out)
}

// GetList executes a GET against a paginated list endpoint. The envelope
// must carry pagination metadata; its absence means the wrong method was
// used, which is a programmer error, not a data error. A null or absent data
// array normalizes to an empty list: callers never receive nil where a list
// is expected.
func (c *Client) GetList(ctx context.Context, path string, out any, opts ...RequestOption) (Pagination, error) {
	data, meta, err := c.do(ctx, http.MethodGet, path, nil, opts...)
	if err != nil {
		return Pagination{}, err
	}
	if meta == nil || meta.Pagination == nil {
		return Pagination{}, dErrors.New(dErrors.CodeInvariantViolation,
			"endpoint returned no pagination metadata; use Get for non-list endpoints")
	}
	if isJSONNull(data) {
		data = json.RawMessage("[]")
	}
	if err := unmarshalPayload(data, out); err != nil {
		return Pagination{}, err
	}
	return meta.Pagination.Normalize(), nil
}

// Post executes a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	data, _, err := c.do(ctx, http.MethodPost, path, body, opts...)
	if err != nil {
		return err
	}
	return unmarshalPayload(data, out)
}

// Put executes a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	data, _, err := c.do(ctx, http.MethodPut, path, body, opts...)
	if err != nil {
		return err
	}
	return unmarshalPayload(data, out)
}

// Delete executes a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) error {
	_, _, err := c.do(ctx, http.MethodDelete, path, nil, opts...)
	return err
}

func unmarshalPayload(data json.RawMessage, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeContractViolation, "decoding response payload")
	}
	return nil
}

func isJSONNull(data json.RawMessage) bool {
	return len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// do runs the retry loop and the one-shot refresh-and-replay path. The retry
// budget never covers auth errors, and the replay never counts against the
// retry budget.
func (c *Client) do(ctx context.Context, method, path string, body any, opts ...RequestOption) (json.RawMessage, *Meta, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "encoding request body")
		}
	}

	ctx, span := c.tracer.Start(ctx, "api.request", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RequestDurationMs.Observe(float64(time.Since(start).Milliseconds()))
		}
	}()

	replayed := false
	retries := 0
	for {
		data, meta, code, err := c.attempt(ctx, method, path, payload, ro)
		if err == nil {
			c.countRequest("ok")
			span.SetAttributes(attribute.Int("http.retries", retries))
			return data, meta, nil
		}

		if IsAuthError(code) && !ro.refreshCall && !replayed && c.refresher != nil {
			replayed = true
			if rerr := c.refresher.Refresh(ctx); rerr != nil {
				c.countRequest(string(dErrors.CodeOf(rerr)))
				return nil, nil, rerr
			}
			c.logger.InfoContext(ctx, "replaying request after session refresh",
				"method", method, "path", path)
			continue
		}

		if !IsRetryable(code) || retries >= c.maxRetries {
			c.countRequest(string(code))
			c.logger.WarnContext(ctx, "request failed",
				"method", method, "path", path, "code", string(code), "retries", retries)
			span.SetAttributes(attribute.String("error.code", string(code)))
			return nil, nil, err
		}

		delay := c.backoff(retries)
		retries++
		if c.metrics != nil {
			c.metrics.RequestRetries.Inc()
		}
		c.logger.WarnContext(ctx, "retrying request",
			"method", method, "path", path, "code", string(code),
			"attempt", retries, "delay_ms", delay.Milliseconds())

		select {
		case <-ctx.Done():
			c.countRequest(string(dErrors.CodeTimeout))
			return nil, nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "request canceled during backoff")
		case <-time.After(delay):
		}
	}
}

// backoff computes base * 2^attempt plus up to half the base of jitter.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.retryBase << attempt
	jitter := time.Duration(rand.Int63n(int64(c.retryBase/2) + 1))
	return d + jitter
}

func (c *Client) countRequest(code string) {
	if c.metrics != nil {
		c.metrics.Requests.WithLabelValues(code).Inc()
	}
}

// attempt performs exactly one HTTP round trip and classifies the outcome.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, ro requestOptions) (json.RawMessage, *Meta, dErrors.Code, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, dErrors.CodeInvalidInput, dErrors.Wrap(err, dErrors.CodeInvalidInput, "building request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ro.tenantID != "" {
		req.Header.Set(HeaderTenantID, ro.tenantID)
	}
	if ro.projectID != "" {
		req.Header.Set(HeaderProjectID, ro.projectID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		code := Classify(err, 0)
		return nil, nil, code, dErrors.Wrap(err, code, "request transport failure")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		code := Classify(err, 0)
		return nil, nil, code, dErrors.Wrap(err, code, "reading response body")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		data, meta, decErr := decodeEnvelope(raw)
		if decErr != nil {
			return nil, nil, dErrors.CodeContractViolation, decErr
		}
		return data, meta, "", nil
	}

	code := Classify(nil, resp.StatusCode)
	// The refresh endpoint signals an expired long-lived credential with a
	// distinct machine code; that outcome is terminal, not a generic 401.
	if code == dErrors.CodeUnauthorized && errorCode(raw) == "session_expired" {
		code = dErrors.CodeSessionExpired
	}
	msg := errorMessage(raw)
	if msg == "" {
		msg = fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode)
	}
	return nil, nil, code, dErrors.New(code, msg)
}
