package tui

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded
	// payloads, the encoding the form controllers consume.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional prefixes the renderer applies to printed messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// DefaultTheme marks errors and successes with ASCII prefixes.
func DefaultTheme() Theme {
	return Theme{InfoPrefix: "[ok] ", ErrorPrefix: "[error] "}
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
