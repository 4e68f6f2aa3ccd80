package html

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// Built in theme identifiers.
const (
	DefaultTheme   = "alohomora"
	VariantLight   = "light"
	VariantDark    = "dark"
	DefaultVariant = VariantLight

	// PageTemplateKey prefixes manifest template overrides ("pages.loan").
	PageTemplateKey = "pages."

	assetStylesheet = "stylesheet"
	assetVariant    = "variant.stylesheet"
)

// DefaultManifest describes the bundled theme. Base tokens are the light
// palette; the dark variant overrides them.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":          "#2f5d8a",
			"brand-contrast": "#ffffff",
			"surface":        "#ffffff",
			"text":           "#1f2933",
			"danger":         "#b42318",
			"success":        "#1e7b3c",
			"font-family":    "system-ui, sans-serif",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				assetStylesheet: StylesheetName,
			},
		},
		Variants: map[string]theme.Variant{
			VariantLight: {},
			VariantDark: {
				Tokens: map[string]string{
					"brand":          "#7aa7d6",
					"brand-contrast": "#0b1220",
					"surface":        "#0b1220",
					"text":           "#e4e7eb",
				},
				Assets: theme.Assets{
					Files: map[string]string{
						assetVariant: "alohomora-dark.css",
					},
				},
			},
		},
	}
}

// Selector resolves theme and variant names against registered manifests.
// Empty names fall back to the configured defaults.
type Selector struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Selector)(nil)

// NewSelector validates manifests through a go-theme registry and indexes
// them by name. DefaultManifest is always available.
func NewSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*Selector, error) {
	all := append([]*theme.Manifest{DefaultManifest()}, manifests...)

	registry := theme.NewRegistry()
	s := &Selector{
		manifests:      make(map[string]*theme.Manifest, len(all)),
		defaultTheme:   firstNonEmpty(defaultTheme, DefaultTheme),
		defaultVariant: firstNonEmpty(defaultVariant, DefaultVariant),
	}
	for _, manifest := range all {
		if manifest != nil {
			s.manifests[manifest.Name] = manifest
		}
	}
	for name, manifest := range s.manifests {
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("html: register theme %q: %w", name, err)
		}
	}

	if _, err := s.Select("", ""); err != nil {
		return nil, err
	}
	return s, nil
}

// Select implements theme.ThemeSelector.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = firstNonEmpty(name, s.defaultTheme)
	variant = firstNonEmpty(variant, s.defaultVariant)

	s.mu.RLock()
	manifest, ok := s.manifests[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("html: unknown theme %q", name)
	}
	if _, ok := manifest.Variants[variant]; !ok && len(manifest.Variants) > 0 {
		return nil, fmt.Errorf("html: theme %q has no variant %q", name, variant)
	}

	return &theme.Selection{
		Theme:    name,
		Variant:  variant,
		Manifest: manifest,
	}, nil
}

// RendererConfig flattens a selection: variant tokens, templates and assets
// override the manifest base.
func RendererConfig(sel *theme.Selection) *theme.RendererConfig {
	if sel == nil || sel.Manifest == nil {
		return nil
	}
	manifest := sel.Manifest
	variant := manifest.Variants[sel.Variant]

	tokens := mergeStrings(manifest.Tokens, variant.Tokens)
	files := mergeStrings(manifest.Assets.Files, variant.Assets.Files)
	prefix := firstNonEmpty(variant.Assets.Prefix, manifest.Assets.Prefix)

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    sel.Theme,
		Variant:  sel.Variant,
		Partials: mergeStrings(manifest.Templates, variant.Templates),
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || strings.TrimSpace(file) == "" {
				return ""
			}
			if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
				return file
			}
			return path.Join("/", prefix, file)
		},
	}
}

// themeContext is the theme data the layout template reads.
type themeContext struct {
	Name        string            `json:"name"`
	Variant     string            `json:"variant"`
	Tokens      map[string]string `json:"tokens,omitempty"`
	Style       string            `json:"style,omitempty"`
	Stylesheets []string          `json:"stylesheets,omitempty"`
}

func buildThemeContext(cfg *theme.RendererConfig) themeContext {
	if cfg == nil {
		return themeContext{}
	}
	ctx := themeContext{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Tokens:  cfg.Tokens,
		Style:   cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		for _, key := range []string{assetStylesheet, assetVariant} {
			if href := cfg.AssetURL(key); href != "" {
				ctx.Stylesheets = append(ctx.Stylesheets, href)
			}
		}
	}
	return ctx
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

func mergeStrings(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
