// Package forms loads the declarative intake form definitions. The built-in
// definitions are embedded from definitions/*.yaml; callers may load their
// own bundle with LoadFS.
package forms

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-intake/components/physicians"
	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla"
)

// Built-in form ids.
const (
	Basic    = "basic"
	Register = "register"
)

//go:embed definitions/*.yaml
var definitionsFS embed.FS

// FS exposes the embedded definitions.
func FS() fs.FS {
	sub, err := fs.Sub(definitionsFS, "definitions")
	if err != nil {
		return definitionsFS
	}
	return sub
}

// OptionSource supplies select options referenced by optionsFrom.
type OptionSource func() ([]field.Option, error)

// Option configures LoadFS.
type Option func(*loader)

// WithOptionSource registers or replaces a named option source.
func WithOptionSource(name string, source OptionSource) Option {
	return func(l *loader) {
		if source == nil {
			delete(l.sources, name)
			return
		}
		l.sources[name] = source
	}
}

// WithCustomRenderer registers or replaces a named custom renderer factory.
func WithCustomRenderer(name string, factory vanilla.CustomFactory) Option {
	return func(l *loader) {
		if factory == nil {
			delete(l.customs, name)
			return
		}
		l.customs[name] = factory
	}
}

type loader struct {
	sources map[string]OptionSource
	customs map[string]vanilla.CustomFactory
}

// Catalog holds validated definitions keyed by id.
type Catalog struct {
	forms map[string]form.Definition
}

// Default loads the embedded definitions with the built-in option sources
// and custom renderers.
func Default(opts ...Option) (*Catalog, error) {
	return LoadFS(FS(), opts...)
}

// LoadFS parses every .yaml/.yml file in fsys as one form definition.
func LoadFS(fsys fs.FS, opts ...Option) (*Catalog, error) {
	l := &loader{
		sources: map[string]OptionSource{"physicians": physicians.FieldOptions},
		customs: vanilla.CustomRenderers(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	catalog := &Catalog{forms: make(map[string]form.Definition)}
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("forms: read %s: %w", p, err)
		}
		var doc definitionFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("forms: parse %s: %w", p, err)
		}

		def, err := l.build(doc, p)
		if err != nil {
			return err
		}
		if _, exists := catalog.forms[def.ID]; exists {
			return fmt.Errorf("forms: duplicate form %q (file %s)", def.ID, p)
		}
		catalog.forms[def.ID] = def
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// Get returns the definition registered under id.
func (c *Catalog) Get(id string) (form.Definition, bool) {
	if c == nil {
		return form.Definition{}, false
	}
	def, ok := c.forms[id]
	return def, ok
}

// MustGet is Get for ids known to exist; it panics otherwise.
func (c *Catalog) MustGet(id string) form.Definition {
	def, ok := c.Get(id)
	if !ok {
		panic(fmt.Sprintf("forms: unknown form %q", id))
	}
	return def
}

// IDs lists the loaded form ids in sorted order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.forms))
	for id := range c.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type definitionFile struct {
	ID          string         `yaml:"id"`
	Operation   string         `yaml:"operation"`
	Title       string         `yaml:"title"`
	Subtitle    string         `yaml:"subtitle"`
	SubmitLabel string         `yaml:"submitLabel"`
	Defaults    map[string]any `yaml:"defaults"`
	Fields      []fieldFile    `yaml:"fields"`
	Sections    []sectionFile  `yaml:"sections"`
}

type sectionFile struct {
	Title  string      `yaml:"title"`
	Fields []fieldFile `yaml:"fields"`
}

type fieldFile struct {
	Kind        string         `yaml:"kind"`
	Name        string         `yaml:"name"`
	Label       string         `yaml:"label"`
	Placeholder string         `yaml:"placeholder"`
	Icon        string         `yaml:"icon"`
	IconAlt     string         `yaml:"iconAlt"`
	DateFormat  string         `yaml:"dateFormat"`
	ShowTime    bool           `yaml:"showTime"`
	Disabled    bool           `yaml:"disabled"`
	Row         string         `yaml:"row"`
	Options     []field.Option `yaml:"options"`
	OptionsFrom string         `yaml:"optionsFrom"`
	Custom      string         `yaml:"custom"`
}

func (l *loader) build(doc definitionFile, source string) (form.Definition, error) {
	def := form.Definition{
		ID:          strings.TrimSpace(doc.ID),
		Operation:   strings.TrimSpace(doc.Operation),
		Title:       doc.Title,
		Subtitle:    doc.Subtitle,
		SubmitLabel: doc.SubmitLabel,
		Defaults:    doc.Defaults,
	}
	if def.ID == "" {
		def.ID = strings.TrimSuffix(path.Base(source), path.Ext(source))
	}

	for _, raw := range doc.Fields {
		desc, err := l.descriptor(raw, "")
		if err != nil {
			return form.Definition{}, fmt.Errorf("forms: %s: %w", source, err)
		}
		def.Fields = append(def.Fields, desc)
	}
	for _, section := range doc.Sections {
		for _, raw := range section.Fields {
			desc, err := l.descriptor(raw, section.Title)
			if err != nil {
				return form.Definition{}, fmt.Errorf("forms: %s: %w", source, err)
			}
			def.Fields = append(def.Fields, desc)
		}
	}

	if err := def.Validate(); err != nil {
		return form.Definition{}, fmt.Errorf("forms: %s: %w", source, err)
	}
	return def, nil
}

func (l *loader) descriptor(raw fieldFile, section string) (field.Descriptor, error) {
	desc := field.Descriptor{
		Kind:        field.ParseKind(raw.Kind),
		Name:        strings.TrimSpace(raw.Name),
		Label:       raw.Label,
		Placeholder: raw.Placeholder,
		IconRef:     raw.Icon,
		IconAlt:     raw.IconAlt,
		DateFormat:  raw.DateFormat,
		ShowTime:    raw.ShowTime,
		Disabled:    raw.Disabled,
		Section:     section,
		Row:         raw.Row,
		Options:     labelled(raw.Options),
	}

	if name := strings.TrimSpace(raw.OptionsFrom); name != "" {
		source, ok := l.sources[name]
		if !ok {
			return field.Descriptor{}, fmt.Errorf("field %q: unknown option source %q", desc.Name, name)
		}
		options, err := source()
		if err != nil {
			return field.Descriptor{}, fmt.Errorf("field %q: option source %q: %w", desc.Name, name, err)
		}
		desc.Options = append(desc.Options, labelled(options)...)
	}

	if name := strings.TrimSpace(raw.Custom); name != "" {
		factory, ok := l.customs[name]
		if !ok {
			return field.Descriptor{}, fmt.Errorf("field %q: unknown custom renderer %q", desc.Name, name)
		}
		desc.Custom = factory(desc)
	}
	return desc, nil
}

func isDefinitionFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func labelled(options []field.Option) []field.Option {
	if len(options) == 0 {
		return nil
	}
	out := make([]field.Option, len(options))
	for i, opt := range options {
		if opt.Label == "" {
			opt.Label = opt.Value
		}
		out[i] = opt
	}
	return out
}
