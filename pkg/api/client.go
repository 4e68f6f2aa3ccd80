package api

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-alohomora/internal/metrics"
	"github.com/goliatone/go-alohomora/pkg/model"
)

// Endpoint paths relative to the configured prefix.
const (
	PathBorrowers = "/borrowers"
	PathLoanApply = "/loans/apply"
	PathPing      = "/v1/ping"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Client talks to the loan API. It is safe for concurrent use.
type Client struct {
	base         *url.URL
	prefix       string
	http         *http.Client
	logger       *slog.Logger
	tracer       trace.Tracer
	propagator   propagation.TextMapPropagator
	resultFields map[string]string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default tuned client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each call. It applies to the default client or a copy of
// the one passed through WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		clone := *c.http
		clone.Timeout = d
		c.http = &clone
	}
}

// WithPrefix prepends prefix to every endpoint path, e.g. "/api" when the
// client goes through the front end proxy.
func WithPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = strings.TrimRight(prefix, "/")
	}
}

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer sets the tracer used for per call spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithResultFields configures JSONPath fields logged from success bodies.
func WithResultFields(fields map[string]string) Option {
	return func(c *Client) {
		c.resultFields = fields
	}
}

// New builds a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", baseURL)
	}

	c := &Client{
		base:       u,
		http:       NewHTTPClient(DefaultTransportConfig()),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:     otel.Tracer("github.com/goliatone/go-alohomora/pkg/api"),
		propagator: otel.GetTextMapPropagator(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// URL returns the absolute URL of an endpoint path.
func (c *Client) URL(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + c.prefix + path
	return u.String()
}

// ListBorrowers fetches all borrowers.
func (c *Client) ListBorrowers(ctx context.Context) ([]model.Borrower, error) {
	var out []model.Borrower
	if _, err := c.do(ctx, "ListBorrowers", http.MethodGet, PathBorrowers, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Borrower{}
	}
	return out, nil
}

// CreateBorrower posts a new borrower and returns the created record.
func (c *Client) CreateBorrower(ctx context.Context, req model.CreateBorrowerRequest) (model.Borrower, error) {
	var out model.Borrower
	if _, err := c.do(ctx, "CreateBorrower", http.MethodPost, PathBorrowers, req, &out); err != nil {
		return model.Borrower{}, err
	}
	return out, nil
}

// ApplyForLoan posts a loan application.
func (c *Client) ApplyForLoan(ctx context.Context, app model.LoanApplication) (model.LoanApplicationResult, error) {
	var out model.LoanApplicationResult
	if _, err := c.do(ctx, "ApplyForLoan", http.MethodPost, PathLoanApply, app, &out); err != nil {
		return model.LoanApplicationResult{}, err
	}
	return out, nil
}

// Ping checks that the API answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var out map[string]any
	_, err := c.do(ctx, "Ping", http.MethodGet, PathPing, nil, &out)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, payload, out any) (status int, err error) {
	ctx, span := c.tracer.Start(ctx, "api."+op, trace.WithSpanKind(trace.SpanKindClient))
	started := time.Now()
	defer func() {
		metrics.ObserveAPICall(op, status, time.Since(started))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	target := c.URL(path)
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", target),
	)

	var body io.Reader
	if payload != nil {
		raw, encErr := json.Marshal(payload)
		if encErr != nil {
			return 0, &Error{Op: op, Kind: KindEncode, Err: encErr}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, &Error{Op: op, Kind: KindEncode, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("api.request.failed", "op", op, "url", target, "error", err)
		return 0, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	status = resp.StatusCode
	span.SetAttributes(attribute.Int("http.status_code", status))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logger.Error("api.response.read_failed", "op", op, "status", status, "error", err)
		return status, &Error{Op: op, Kind: KindTransport, Status: status, Err: err}
	}

	if status < 200 || status > 299 {
		detail := detailOf(raw)
		c.logger.Warn("api.response.status", "op", op, "status", status, "detail", detail)
		return status, &Error{Op: op, Kind: KindStatus, Status: status, Detail: detail}
	}

	if out != nil {
		if len(bytes.TrimSpace(raw)) == 0 {
			return status, &Error{Op: op, Kind: KindDecode, Status: status, Err: errors.New("empty response body")}
		}
		if err := json.Unmarshal(raw, out); err != nil {
			c.logger.Error("api.response.decode_failed", "op", op, "status", status, "error", err)
			return status, &Error{Op: op, Kind: KindDecode, Status: status, Err: err}
		}
	}

	attrs := []any{"op", op, "status", status}
	for name, val := range Summarize(raw, c.resultFields) {
		attrs = append(attrs, name, val)
	}
	c.logger.Debug("api.response.ok", attrs...)
	return status, nil
}
