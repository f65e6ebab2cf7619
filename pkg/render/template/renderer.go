package template

import (
	"io"
)

// TemplateRenderer renders a named template from the bundle. It is all the
// HTML renderer needs from an engine.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

// Engine is the wider github.com/goliatone/go-template contract, for callers
// that register filters or global data before rendering.
type Engine interface {
	TemplateRenderer
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
