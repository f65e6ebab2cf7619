package tui

import "github.com/rs/zerolog"

// OutputFormat controls how collected values are serialized by Render.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits one "name: value" line per field.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional message prefixes. ANSI handling stays in the
// driver.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
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

// WithCustomPrompt registers the prompt used for custom descriptors whose
// renderer carries the given name.
func WithCustomPrompt(name string, prompt PromptFunc) Option {
	return func(r *Renderer) {
		if name == "" || prompt == nil {
			return
		}
		r.custom[name] = prompt
	}
}

// WithMaxAttempts bounds the correction rounds Fill runs after validation
// fails. Zero or less keeps the default.
func WithMaxAttempts(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithLogger attaches a logger for prompt diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
