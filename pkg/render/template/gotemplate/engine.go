package gotemplate

import (
	"errors"
	"fmt"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-intake/pkg/render/template"
)

var _ template.Engine = (*gotemplatepkg.Engine)(nil)

// NewGoTemplate builds a github.com/goliatone/go-template engine from the same
// options New accepts. The phone and trim filters are registered for it too,
// so the bundled templates render the same with either engine.
func NewGoTemplate(options ...Option) (*gotemplatepkg.Engine, error) {
	cfg := &config{
		extension: ".tmpl",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.templates == nil {
		return nil, errors.New("gotemplate: templates fs.FS is required")
	}

	opts := []gotemplatepkg.Option{
		gotemplatepkg.WithFS(cfg.templates),
		gotemplatepkg.WithExtension(cfg.extension),
		gotemplatepkg.WithTemplateFunc(map[string]any{
			"phone": pongo2.FilterFunction(filterPhone),
		}),
	}
	if len(cfg.globalData) > 0 {
		opts = append(opts, gotemplatepkg.WithGlobalData(cfg.globalData))
	}
	opts = append(opts, cfg.goTemplate...)

	engine, err := gotemplatepkg.NewRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: go-template engine: %w", err)
	}

	for name, fn := range cfg.filters {
		if pongo2.FilterExists(name) {
			continue
		}
		if err := engine.RegisterFilter(name, fn); err != nil {
			return nil, fmt.Errorf("gotemplate: register filter %q: %w", name, err)
		}
	}
	return engine, nil
}
