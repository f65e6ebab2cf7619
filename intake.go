// Package intake is the top-level entry point for rendering the patient
// intake forms without running the server.
package intake

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-intake/forms"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/renderers/jsonview"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla"
)

// RenderOptions aliases render.RenderOptions for callers prefilling values
// or surfacing validation errors.
type RenderOptions = render.RenderOptions

// Option configures GenerateForm.
type Option func(*generator)

type generator struct {
	catalog *forms.Catalog
	theme   string
	variant string
	opts    RenderOptions
}

// WithCatalog renders from catalog instead of the embedded definitions.
func WithCatalog(catalog *forms.Catalog) Option {
	return func(g *generator) {
		g.catalog = catalog
	}
}

// WithTheme selects the theme and variant for HTML output.
func WithTheme(name, variant string) Option {
	return func(g *generator) {
		g.theme = name
		g.variant = variant
	}
}

// WithRenderOptions seeds values, errors and hidden fields.
func WithRenderOptions(opts RenderOptions) Option {
	return func(g *generator) {
		g.opts = opts
	}
}

// NewRenderers returns a registry holding the HTML renderer (the fallback)
// and the JSON renderer.
func NewRenderers(opts ...vanilla.Option) (*render.Registry, error) {
	html, err := vanilla.New(opts...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	registry.MustRegister(html)
	registry.MustRegister(jsonview.New(true))
	return registry, nil
}

// GenerateForm renders the form formID with the named renderer ("vanilla" or
// "json"). Declared defaults are merged under any supplied values.
func GenerateForm(ctx context.Context, formID, rendererName, action string, options ...Option) ([]byte, error) {
	g := generator{}
	for _, opt := range options {
		if opt != nil {
			opt(&g)
		}
	}
	if g.catalog == nil {
		catalog, err := forms.Default()
		if err != nil {
			return nil, err
		}
		g.catalog = catalog
	}

	def, ok := g.catalog.Get(formID)
	if !ok {
		return nil, fmt.Errorf("intake: unknown form %q", formID)
	}

	selection, err := vanilla.NewSelector(vanilla.DefaultThemeName, "", vanilla.DefaultManifest()).Select(g.theme, g.variant)
	if err != nil {
		return nil, fmt.Errorf("intake: %w", err)
	}
	registry, err := NewRenderers(vanilla.WithTheme(vanilla.RendererConfig(selection)))
	if err != nil {
		return nil, fmt.Errorf("intake: %w", err)
	}
	renderer, err := registry.Get(rendererName)
	if err != nil {
		return nil, fmt.Errorf("intake: %w", err)
	}

	opts := g.opts
	if action != "" {
		opts.Action = action
	}
	ctrl := def.NewController(opts.Values)
	opts.Values = ctrl.State().Values()
	return renderer.Render(ctx, def, opts)
}

// Definition returns a built-in form definition.
func Definition(formID string) (form.Definition, error) {
	catalog, err := forms.Default()
	if err != nil {
		return form.Definition{}, err
	}
	def, ok := catalog.Get(formID)
	if !ok {
		return form.Definition{}, fmt.Errorf("intake: unknown form %q", formID)
	}
	return def, nil
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet and icons the HTML pages reference under
// /assets.
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
