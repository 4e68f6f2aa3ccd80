package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-alohomora/pkg/model"
	"github.com/goliatone/go-alohomora/pkg/page"
	"github.com/goliatone/go-alohomora/pkg/render"
	rendertemplate "github.com/goliatone/go-alohomora/pkg/render/template"
	"github.com/goliatone/go-alohomora/pkg/render/template/pongo"
)

// Name is the registry identifier of the HTML renderer.
const Name = "html"

const (
	layoutTemplate = "layout"
	formTemplate   = "partials/form"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateDir      string
	templateRenderer rendertemplate.TemplateRenderer
	selector         theme.ThemeSelector
	themeName        string
	themeVariant     string
	home             []byte
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir layers templates from a directory on disk over the
// embedded bundle.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		if _, err := os.Stat(path); err != nil {
			return
		}
		cfg.templateDir = path
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithThemeSelector resolves themes through selector instead of the bundled
// manifest.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(cfg *config) {
		if selector != nil {
			cfg.selector = selector
		}
	}
}

// WithTheme sets the theme and variant used when a view does not ask for
// one.
func WithTheme(name, variant string) Option {
	return func(cfg *config) {
		cfg.themeName = strings.TrimSpace(name)
		cfg.themeVariant = strings.TrimSpace(variant)
	}
}

// WithHomeMarkdown replaces the home page content.
func WithHomeMarkdown(src []byte) Option {
	return func(cfg *config) {
		if len(src) > 0 {
			cfg.home = append([]byte(nil), src...)
		}
	}
}

// Renderer produces full HTML documents: the page partial for the view is
// rendered first and then wrapped by the layout.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
	home         string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		home:       HomeMarkdown(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithBaseDir(cfg.templateDir),
			pongo.WithFilters(map[string]pongo.FilterFunc{
				"markdown": markdownFilter,
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	selector := cfg.selector
	if selector == nil {
		defaultSelector, err := NewSelector(cfg.themeName, cfg.themeVariant)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure themes: %w", err)
		}
		selector = defaultSelector
	}

	return &Renderer{
		templates:    renderer,
		selector:     selector,
		themeName:    cfg.themeName,
		themeVariant: cfg.themeVariant,
		home:         string(cfg.home),
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the document for view. Exactly one page template runs per
// call.
func (r *Renderer) Render(ctx context.Context, view render.View) ([]byte, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if r.templates == nil {
		return nil, errors.New("html renderer: template renderer is nil")
	}
	if _, err := page.Parse(string(view.Page)); err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}
	if len(view.Nav) == 0 {
		view.Nav = page.Links(view.Page)
	}
	if view.Title == "" {
		view.Title = view.Page.Title()
	}

	cfg, err := r.resolveTheme(view)
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"view": view,
		"home": r.home,
	}
	if view.Form != nil {
		formMarkup, err := r.templates.RenderTemplate(formTemplate, formData(view))
		if err != nil {
			return nil, fmt.Errorf("html renderer: render form: %w", err)
		}
		data["formMarkup"] = formMarkup
	}

	content, err := r.renderPage(view.Page, cfg, data)
	if err != nil {
		return nil, err
	}

	out, err := r.templates.RenderTemplate(layoutTemplate, map[string]any{
		"view":    view,
		"theme":   buildThemeContext(cfg),
		"content": content,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render layout: %w", err)
	}
	return []byte(out), nil
}

func (r *Renderer) renderPage(p page.Page, cfg *theme.RendererConfig, data map[string]any) (string, error) {
	name := "pages/" + string(p)
	if cfg != nil {
		if override := strings.TrimSpace(cfg.Partials[PageTemplateKey+string(p)]); override != "" {
			name = override
		}
	}
	out, err := r.templates.Render(name, data)
	if err != nil {
		return "", fmt.Errorf("html renderer: render page %s: %w", p, err)
	}
	return out, nil
}

// resolveTheme honours a "name"/"variant" request carried on the view and
// falls back to the renderer defaults.
func (r *Renderer) resolveTheme(view render.View) (*theme.RendererConfig, error) {
	name, variant := r.themeName, r.themeVariant
	if requested, ok := view.Theme["name"].(string); ok && strings.TrimSpace(requested) != "" {
		name = requested
	}
	if requested, ok := view.Theme["variant"].(string); ok && strings.TrimSpace(requested) != "" {
		variant = requested
	}

	sel, err := r.selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("html renderer: select theme: %w", err)
	}
	return RendererConfig(sel), nil
}

type optionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type fieldView struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Label    string          `json:"label"`
	Type     model.FieldType `json:"type"`
	Format   string          `json:"format,omitempty"`
	Required bool            `json:"required"`
	Value    string          `json:"value"`
	Checked  bool            `json:"checked"`
	Errors   []string        `json:"errors,omitempty"`
	Options  []optionView    `json:"options,omitempty"`
}

func formData(view render.View) map[string]any {
	form := *view.Form

	fields := make([]fieldView, 0, len(form.Fields))
	for _, field := range form.Fields {
		value := view.Value(field.Name)
		fv := fieldView{
			ID:       field.Name,
			Name:     field.Name,
			Label:    field.Label,
			Type:     field.Type,
			Format:   field.Format,
			Required: field.Required,
			Value:    value,
			Checked:  field.Type == model.FieldTypeBoolean && value == "on",
			Errors:   view.FieldErrors(field.Name),
		}
		for _, opt := range field.Options {
			fv.Options = append(fv.Options, optionView{
				Value:    opt.Value,
				Label:    opt.Label,
				Selected: opt.Value != "" && opt.Value == value,
			})
		}
		fields = append(fields, fv)
	}

	data := map[string]any{
		"form":         form,
		"fields":       fields,
		"formErrors":   view.FormErrors,
		"hiddenFields": view.Hidden,
	}
	if view.Notification != nil && strings.TrimSpace(view.Notification.Message) != "" {
		data["notification"] = view.Notification.Sanitized()
	}
	return data
}
