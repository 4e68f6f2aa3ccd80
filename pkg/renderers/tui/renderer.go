package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-alohomora/pkg/model"
	"github.com/goliatone/go-alohomora/pkg/render"
)

// Name is the registry identifier of the terminal renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal sessions. Rendering a
// form view prompts for every field and returns the answers encoded the way
// the HTML form would post them.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, form output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatFormURLEncoded,
		theme:        DefaultTheme(),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}

	switch r.outputFormat {
	case OutputFormatFormURLEncoded, OutputFormatJSON, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unsupported output format %q", r.outputFormat)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatJSON:
		return "application/json"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/x-www-form-urlencoded"
	}
}

// Render prints the view's messages and, for form views, collects answers.
// Views without a form print their title and produce no output.
func (r *Renderer) Render(ctx context.Context, view render.View) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	if view.Notification != nil {
		if err := r.Notify(ctx, *view.Notification); err != nil {
			return nil, err
		}
	}
	for _, message := range view.FormErrors {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+render.PlainText(message)); err != nil {
			return nil, err
		}
	}

	if view.Form == nil {
		return nil, r.driver.Info(ctx, view.Title)
	}

	form := *view.Form
	if form.Title != "" {
		if err := r.driver.Info(ctx, form.Title); err != nil {
			return nil, err
		}
	}

	state := NewState(view.Values, view.Errors)
	for _, field := range form.Fields {
		if err := r.promptField(ctx, field, state); err != nil {
			return nil, err
		}
	}

	values := state.Values()
	for _, hidden := range view.Hidden {
		if name := strings.TrimSpace(hidden.Name); name != "" {
			values.Set(name, hidden.Value)
		}
	}
	return r.serialize(values)
}

// Notify prints a submission notification through the driver.
func (r *Renderer) Notify(ctx context.Context, n render.Notification) error {
	n = n.Sanitized()
	if strings.TrimSpace(n.Message) == "" {
		return nil
	}
	prefix := r.theme.InfoPrefix
	if n.Kind == render.NotificationError {
		prefix = r.theme.ErrorPrefix
	}
	return r.driver.Info(ctx, prefix+n.Message)
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, state *State) error {
	if messages := state.ErrorsFor(field.Name); len(messages) > 0 {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+formatErrors(displayLabel(field), messages)); err != nil {
			return err
		}
	}

	switch field.Type {
	case model.FieldTypeBoolean:
		return r.promptBoolean(ctx, field, state)
	case model.FieldTypeSelect:
		return r.promptSelect(ctx, field, state)
	default:
		return r.promptInput(ctx, field, state)
	}
}

func (r *Renderer) promptInput(ctx context.Context, field model.Field, state *State) error {
	label := displayLabel(field)
	validate := fieldValidator(field)

	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   state.Get(field.Name),
			Help:      field.Description,
			Validator: validate,
		})
		if err != nil {
			return err
		}

		if err := validate(response); err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", label, err))
			continue
		}

		state.Set(field.Name, strings.TrimSpace(response))
		return nil
	}
}

func (r *Renderer) promptBoolean(ctx context.Context, field model.Field, state *State) error {
	resp, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(field),
		Default: state.Get(field.Name) == "on",
		Help:    field.Description,
	})
	if err != nil {
		return err
	}
	if resp {
		state.Set(field.Name, "on")
	} else {
		state.Clear(field.Name)
	}
	return nil
}

// promptSelect offers every non placeholder option. With nothing to offer the
// placeholder value is submitted and the controller reports the missing
// selection.
func (r *Renderer) promptSelect(ctx context.Context, field model.Field, state *State) error {
	label := displayLabel(field)

	var values, labels []string
	for _, opt := range field.Options {
		if opt.Value == "" {
			continue
		}
		values = append(values, opt.Value)
		labels = append(labels, firstNonEmpty(opt.Label, opt.Value))
	}

	if len(values) == 0 {
		state.Set(field.Name, "")
		return r.driver.Info(ctx, fmt.Sprintf("%sNo options available for %s", r.theme.ErrorPrefix, label))
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      labels,
			DefaultIndex: indexOf(values, state.Get(field.Name)),
			Help:         field.Description,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(values) {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s selection", label))
			continue
		}
		state.Set(field.Name, values[idx])
		return nil
	}
}

// fieldValidator mirrors the browser checks the HTML form carries: required,
// whole numbers for integer inputs and an @ for email inputs.
func fieldValidator(field model.Field) func(string) error {
	return func(input string) error {
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			if field.Required {
				return errors.New("required")
			}
			return nil
		}
		if field.Type == model.FieldTypeInteger {
			if _, err := strconv.Atoi(trimmed); err != nil {
				return errors.New("must be a whole number")
			}
		}
		if field.Format == "email" && !strings.Contains(trimmed, "@") {
			return errors.New("must be a valid email address")
		}
		return nil
	}
}

func (r *Renderer) serialize(values url.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatJSON:
		flat := make(map[string]string, len(values))
		for name := range values {
			flat[name] = values.Get(name)
		}
		return json.Marshal(flat)
	case OutputFormatPrettyText:
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		var b strings.Builder
		for _, name := range names {
			fmt.Fprintf(&b, "%s: %s\n", name, values.Get(name))
		}
		return []byte(b.String()), nil
	default:
		return []byte(values.Encode()), nil
	}
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
