package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/render"
	rendertemplate "github.com/goliatone/go-intake/pkg/render/template"
	gotemplate "github.com/goliatone/go-intake/pkg/render/template/gotemplate"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla/components"
)

const (
	formTemplate = "templates/form.tmpl"
	pageTemplate = "templates/page.tmpl"
)

// Template engines selectable with WithTemplateEngine.
const (
	EnginePongo2     = "pongo2"
	EngineGoTemplate = "go-template"
)

// TemplateEngines lists the names WithTemplateEngine accepts.
func TemplateEngines() []string {
	return []string{EnginePongo2, EngineGoTemplate}
}

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	engine           string
	registry         *components.Registry
	theme            *theme.RendererConfig
	now              func() time.Time
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
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

// WithTemplateEngine picks the built-in engine used when no renderer is
// injected with WithTemplateRenderer. Empty selects pongo2.
func WithTemplateEngine(name string) Option {
	return func(cfg *config) {
		cfg.engine = strings.TrimSpace(name)
	}
}

// WithRegistry replaces the per-kind component registry.
func WithRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithTheme applies a resolved theme: partial overrides, CSS variables and
// asset URLs.
func WithTheme(rc *theme.RendererConfig) Option {
	return func(cfg *config) {
		cfg.theme = rc
	}
}

// WithClock overrides the clock used for the page footer.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// Renderer produces full HTML pages for form definitions.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	fields    *FieldRenderer
	theme     *theme.RendererConfig
	now       func() time.Time
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), now: time.Now}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}
	if cfg.theme == nil {
		cfg.theme = RendererConfig(nil)
	}
	if cfg.theme.AssetURL == nil {
		cfg.theme.AssetURL = func(string) string { return "" }
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := newTemplateEngine(cfg.engine, cfg.templateFS)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates: renderer,
		fields: &FieldRenderer{
			templates: renderer,
			registry:  cfg.registry,
			partials:  cfg.theme.Partials,
			sanitize:  SanitizeControl,
		},
		theme: cfg.theme,
		now:   cfg.now,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Fields exposes the per-field renderer.
func (r *Renderer) Fields() *FieldRenderer {
	return r.fields
}

// Render lays out the definition, renders every field against the current
// values and wraps the form in the page shell.
func (r *Renderer) Render(_ context.Context, def form.Definition, opts render.RenderOptions) ([]byte, error) {
	content, err := r.RenderForm(def, opts)
	if err != nil {
		return nil, err
	}
	return r.page(def.Title, content)
}

// RenderForm renders the <form> element without the page shell.
func (r *Renderer) RenderForm(def form.Definition, opts render.RenderOptions) (string, error) {
	sections := make([]map[string]any, 0)
	for _, section := range def.Layout() {
		rows := make([][]string, 0, len(section.Rows))
		for _, row := range section.Rows {
			cells := make([]string, 0, len(row.Fields))
			for _, desc := range row.Fields {
				markup, err := r.fields.Render(desc, opts.Values[desc.Name], changeFor(opts, desc.Name), opts.Errors[desc.Name])
				if err != nil {
					return "", err
				}
				if markup != "" {
					cells = append(cells, markup)
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		}
		if len(rows) == 0 {
			continue
		}
		sections = append(sections, map[string]any{
			"title": section.Title,
			"rows":  rows,
		})
	}

	hidden := make([]map[string]string, 0, len(opts.Hidden))
	for _, h := range render.SortedHiddenFields(opts.Hidden) {
		hidden = append(hidden, map[string]string{"name": h.Name, "value": h.Value})
	}

	submit := strings.TrimSpace(def.SubmitLabel)
	if submit == "" {
		submit = "Submit"
	}

	out, err := r.templates.RenderTemplate(formTemplate, map[string]any{
		"form": map[string]any{
			"id":       def.ID,
			"method":   opts.HTTPMethod(),
			"action":   opts.Action,
			"title":    def.Title,
			"subtitle": def.Subtitle,
			"hidden":   hidden,
			"sections": sections,
			"errors":   opts.FormErrors,
			"loading":  opts.Loading,
			"loader":   r.theme.AssetURL(AssetLoader),
			"submit":   submit,
		},
	})
	if err != nil {
		return "", fmt.Errorf("vanilla renderer: render form %q: %w", def.ID, err)
	}
	return out, nil
}

// RenderView renders a named template from the bundle inside the page shell.
// data must be plain values; the template engine copies it through JSON.
func (r *Renderer) RenderView(title, name string, data map[string]any) ([]byte, error) {
	content, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render view %q: %w", name, err)
	}
	return r.page(title, content)
}

func (r *Renderer) page(title, content string) ([]byte, error) {
	var stylesheets []string
	if href := r.theme.AssetURL(AssetStylesheet); href != "" {
		stylesheets = append(stylesheets, href)
	}

	out, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"page": map[string]any{
			"title":       title,
			"stylesheets": stylesheets,
			"theme":       r.theme.Theme,
			"variant":     r.theme.Variant,
			"style":       cssVarsStyle(r.theme.CSSVars),
			"logo":        r.theme.AssetURL(AssetLogo),
			"content":     content,
			"year":        strconv.Itoa(r.now().Year()),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render page: %w", err)
	}
	return []byte(out), nil
}

func newTemplateEngine(name string, files fs.FS) (rendertemplate.TemplateRenderer, error) {
	opts := []gotemplate.Option{
		gotemplate.WithFS(files),
		gotemplate.WithExtension(".tmpl"),
	}
	switch name {
	case "", EnginePongo2:
		return gotemplate.New(opts...)
	case EngineGoTemplate:
		return gotemplate.NewGoTemplate(opts...)
	default:
		return nil, fmt.Errorf("unknown template engine %q", name)
	}
}

func changeFor(opts render.RenderOptions, name string) field.ChangeFunc {
	if opts.OnChange == nil {
		return nil
	}
	return opts.OnChange(name)
}
