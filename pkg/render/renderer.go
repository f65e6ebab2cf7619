package render

import (
	"context"

	"github.com/goliatone/go-intake/pkg/form"
)

// Renderer converts a form definition plus per-request state into bytes
// (HTML, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, def form.Definition, options RenderOptions) ([]byte, error)
}
