package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-alohomora/internal/metrics"
	"github.com/goliatone/go-alohomora/pkg/api"
	"github.com/goliatone/go-alohomora/pkg/contract"
	"github.com/goliatone/go-alohomora/pkg/events"
	"github.com/goliatone/go-alohomora/pkg/model"
	"github.com/goliatone/go-alohomora/pkg/render"
)

// Validator checks an outgoing payload against the API contract.
type Validator interface {
	ValidateRequest(ctx context.Context, operationID string, payload any) error
}

// Option configures a controller.
type Option func(*config)

type config struct {
	logger    *slog.Logger
	validator Validator
	guard     *Guard
	publisher events.Publisher
	tracer    trace.Tracer
	now       func() time.Time
}

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithValidator checks payloads before they are sent.
func WithValidator(v Validator) Option {
	return func(c *config) {
		c.validator = v
	}
}

// WithGuard enables double submission protection.
func WithGuard(g *Guard) Option {
	return func(c *config) {
		c.guard = g
	}
}

// WithPublisher receives one event per submission that reached a verdict.
func WithPublisher(p events.Publisher) Option {
	return func(c *config) {
		if p != nil {
			c.publisher = p
		}
	}
}

// WithTracer sets the tracer for submission spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) {
		if t != nil {
			c.tracer = t
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		publisher: events.Noop{},
		tracer:    otel.Tracer("github.com/goliatone/go-alohomora/pkg/controller"),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// begin claims the submission token and returns the duplicate outcome when
// the guard refuses it.
func (c *config) begin(form string, token string, values map[string]string) (Outcome, bool) {
	err := c.guard.Begin(token)
	if err == nil {
		return Outcome{}, true
	}
	c.logger.Warn(form+".submit.duplicate", "submission", token, "error", err)

	if errors.Is(err, ErrAlreadySubmitted) {
		// The first post went through: clear the form so another click
		// needs a fresh, deliberate entry.
		out := success(form, MsgAlreadyAccepted)
		out.Status = StatusDuplicate
		out.Err = err
		return out, false
	}

	// Still pending: keep the values and the token so a resend is refused too.
	out := failure(form, StatusDuplicate, MsgAlreadySubmitted, values)
	out.Token = token
	out.Err = err
	return out, false
}

func (c *config) validate(ctx context.Context, form model.FormModel, operationID string, payload any, values map[string]string) (Outcome, bool) {
	if c.validator == nil {
		return Outcome{}, true
	}
	err := c.validator.ValidateRequest(ctx, operationID, payload)
	if err == nil {
		return Outcome{}, true
	}

	out := failure(form.ID, StatusInvalid, MsgInvalidFields, values)
	out.Err = err
	if v, ok := contract.AsViolation(err); ok {
		mapped := render.MapErrorPayload(form, v.Fields)
		out.Errors = mapped.Fields
		out.FormErrors = mapped.Form
	} else {
		out.FormErrors = []string{"The request could not be prepared."}
	}
	c.logger.Warn(form.ID+".submit.contract_violation", "error", err)
	return out, false
}

func (c *config) record(ctx context.Context, span trace.Span, token string, event events.Event, out Outcome) Outcome {
	span.SetAttributes(attribute.String("submission.status", string(out.Status)))
	metrics.ObserveSubmission(out.Form, string(out.Status))

	if event.Type == "" {
		return out
	}
	event.Form = out.Form
	event.SubmissionID = token
	event.Status = string(out.Status)
	event.OccurredAt = c.now().UTC()
	if out.Err != nil {
		event.Error = errorLabel(out.Err)
	}
	err := c.publisher.Publish(ctx, event)
	metrics.ObserveEvent(err)
	if err != nil {
		c.logger.Error("submission.event.publish_failed", "type", string(event.Type), "error", err)
	}
	return out
}

// errorLabel keeps event payloads free of user input.
func errorLabel(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Status != 0 {
			return string(apiErr.Kind) + ":" + strconv.Itoa(apiErr.Status)
		}
		return string(apiErr.Kind)
	}
	return "client"
}

func logAPIFailure(logger *slog.Logger, msg string, err error) {
	attrs := []any{"error", err}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		attrs = append(attrs, "kind", string(apiErr.Kind), "status", apiErr.Status)
		if apiErr.Detail != "" {
			attrs = append(attrs, "detail", apiErr.Detail)
		}
	}
	logger.Error(msg, attrs...)
}

// retain copies the submitted value of every form field.
func retain(form model.FormModel, values url.Values) map[string]string {
	out := make(map[string]string, len(form.Fields))
	for _, field := range form.Fields {
		if v := values.Get(field.Name); v != "" {
			out[field.Name] = v
		}
	}
	return out
}

// checkFields mirrors the browser's required and type checks. Select fields
// are left to the owning controller.
func checkFields(form model.FormModel, values map[string]string) (errs map[string][]string, missing bool) {
	errs = map[string][]string{}
	for _, field := range form.Fields {
		if field.Type == model.FieldTypeBoolean || field.Type == model.FieldTypeSelect {
			continue
		}
		raw := strings.TrimSpace(values[field.Name])
		if raw == "" {
			if field.Required {
				errs[field.Name] = append(errs[field.Name], field.Label+" is required")
				missing = true
			}
			continue
		}
		if field.Type == model.FieldTypeInteger {
			if _, err := strconv.Atoi(raw); err != nil {
				errs[field.Name] = append(errs[field.Name], field.Label+" must be a whole number")
			}
		}
		if field.Format == "email" && !strings.Contains(raw, "@") {
			errs[field.Name] = append(errs[field.Name], field.Label+" must be a valid email address")
		}
	}
	if len(errs) == 0 {
		return nil, false
	}
	return errs, missing
}

func invalid(form string, errs map[string][]string, missing bool, values map[string]string) Outcome {
	msg := MsgInvalidFields
	if missing {
		msg = MsgMissingFields
	}
	out := failure(form, StatusInvalid, msg, values)
	out.Errors = errs
	return out
}

// atoi parses a value already accepted by checkFields.
func atoi(values map[string]string, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(values[name]))
	return n
}
