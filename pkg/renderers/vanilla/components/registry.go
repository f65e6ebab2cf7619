package components

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/goliatone/go-intake/pkg/field"
	rendertemplate "github.com/goliatone/go-intake/pkg/render/template"
)

// Renderer writes the control markup for one descriptor into buf.
type Renderer func(buf *bytes.Buffer, desc field.Descriptor, data ComponentData) error

// ComponentData carries the current value and rendering helpers.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	Value    any
	OnChange field.ChangeFunc
	// Partials maps partial keys to template paths; missing keys use the
	// built-in templates.
	Partials map[string]string
	// Sanitize cleans markup produced outside the template engine.
	Sanitize func(string) string
}

// Descriptor bundles a renderer with the stylesheets it depends on.
type Descriptor struct {
	Kind        field.Kind
	Renderer    Renderer
	Stylesheets []string
}

// Registry maps field kinds to component descriptors.
type Registry struct {
	mu         sync.RWMutex
	components map[field.Kind]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[field.Kind]Descriptor),
	}
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for kind, descriptor := range r.components {
		cloned.components[kind] = cloneDescriptor(descriptor)
	}
	return cloned
}

// Register associates a descriptor with kind, replacing any existing entry.
func (r *Registry) Register(kind field.Kind, descriptor Descriptor) error {
	if kind == "" {
		return fmt.Errorf("components: kind is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Kind = kind
	r.components[kind] = cloneDescriptor(descriptor)
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(kind field.Kind, descriptor Descriptor) {
	if err := r.Register(kind, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches the descriptor for kind.
func (r *Registry) Descriptor(kind field.Kind) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[kind]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Kinds returns the registered kinds sorted by wire name.
func (r *Registry) Kinds() []field.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]field.Kind, 0, len(r.components))
	for kind := range r.components {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// Stylesheets returns the de-duplicated stylesheets for kinds in order.
func (r *Registry) Stylesheets(kinds []field.Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	seen := make(map[string]struct{})
	for _, kind := range kinds {
		for _, href := range r.components[kind].Stylesheets {
			if _, exists := seen[href]; exists || href == "" {
				continue
			}
			seen[href] = struct{}{}
			out = append(out, href)
		}
	}
	return out
}

func cloneDescriptor(src Descriptor) Descriptor {
	return Descriptor{
		Kind:        src.Kind,
		Renderer:    src.Renderer,
		Stylesheets: slices.Clone(src.Stylesheets),
	}
}
