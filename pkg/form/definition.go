package form

import (
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-intake/pkg/field"
)

// Definition is a declarative form: ordered descriptors plus the copy shown
// around them.
type Definition struct {
	ID          string
	Operation   string
	Title       string
	Subtitle    string
	SubmitLabel string
	Fields      []field.Descriptor
	Defaults    map[string]any
}

// Section groups the fields that share a Descriptor.Section value.
type Section struct {
	Title string
	Rows  []Row
}

// Row holds fields rendered side by side.
type Row struct {
	Fields []field.Descriptor
}

// Validate checks every descriptor and rejects duplicate names.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("form: definition id is required")
	}
	if err := field.ValidateAll(d.Fields); err != nil {
		return fmt.Errorf("form: definition %q: %w", d.ID, err)
	}
	return nil
}

// Field looks up a descriptor by name.
func (d Definition) Field(name string) (field.Descriptor, bool) {
	for _, desc := range d.Fields {
		if desc.Name == name {
			return desc, true
		}
	}
	return field.Descriptor{}, false
}

// DefaultValues returns a copy of the declared defaults.
func (d Definition) DefaultValues() map[string]any {
	out := maps.Clone(d.Defaults)
	if out == nil {
		out = make(map[string]any)
	}
	return out
}

// Layout groups fields into sections in first-seen order. Adjacent fields
// with the same non-empty Row share a row; every other field gets its own.
func (d Definition) Layout() []Section {
	var sections []Section
	index := make(map[string]int)

	for _, desc := range d.Fields {
		pos, ok := index[desc.Section]
		if !ok {
			pos = len(sections)
			index[desc.Section] = pos
			sections = append(sections, Section{Title: desc.Section})
		}

		section := &sections[pos]
		if n := len(section.Rows); n > 0 && desc.Row != "" {
			last := &section.Rows[n-1]
			if last.Fields[0].Row == desc.Row {
				last.Fields = append(last.Fields, desc)
				continue
			}
		}
		section.Rows = append(section.Rows, Row{Fields: []field.Descriptor{desc}})
	}
	return sections
}

// NewController builds a Controller for the definition and seeds it with the
// declared defaults merged with overrides.
func (d Definition) NewController(overrides map[string]any, opts ...Option) *Controller {
	all := append([]Option{WithDescriptors(d.Fields...)}, opts...)
	ctrl := New(all...)

	defaults := d.DefaultValues()
	maps.Copy(defaults, overrides)
	ctrl.Initialize(defaults)
	return ctrl
}
