package field

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNameRequired is returned for descriptors without a name.
	ErrNameRequired = errors.New("field: name is required")
	// ErrLabelRequired is returned for text descriptors without a label.
	ErrLabelRequired = errors.New("field: label is required")
	// ErrOptionsRequired is returned for select descriptors without choices.
	ErrOptionsRequired = errors.New("field: select options are required")
	// ErrCustomRendererMissing is returned for custom descriptors that do not
	// carry a render function.
	ErrCustomRendererMissing = errors.New("field: custom renderer is required")
)

// ChangeFunc receives the new value of a field. Passing nil clears the field
// (the value becomes undefined).
type ChangeFunc func(value any)

// RenderFunc renders a custom control from the current value. The change
// callback lets interactive renderers push values back into form state.
// Returning an empty string renders nothing.
type RenderFunc func(value any, onChange ChangeFunc) (string, error)

// BindFunc reads the submitted input for a custom control and reports the
// decoded value through onChange.
type BindFunc func(in Input, name string, onChange ChangeFunc) error

// Custom carries the render and bind hooks for KindCustom descriptors.
// Partial names a themeable template that template-backed renderers use in
// place of Render.
type Custom struct {
	Name    string
	Partial string
	Render  RenderFunc
	Bind    BindFunc
}

// Option is one choice of a select control. Image is an optional avatar or
// icon reference rendered next to the label.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
	Image string `yaml:"image,omitempty" json:"image,omitempty"`
}

// Descriptor describes one form input.
type Descriptor struct {
	Kind        Kind
	Name        string
	Label       string
	Placeholder string
	IconRef     string
	IconAlt     string
	DateFormat  string
	ShowTime    bool
	Disabled    bool
	Options     []Option
	Custom      *Custom
	Section     string
	Row         string
}

// Validate checks the attributes the descriptor's kind depends on. Attributes
// a kind does not use are not inspected. Unknown kinds pass validation; the
// renderers treat them as a no-op.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	switch d.Kind {
	case KindText:
		if strings.TrimSpace(d.Label) == "" {
			return fmt.Errorf("%w: %q", ErrLabelRequired, d.Name)
		}
	case KindSelect:
		if len(d.Options) == 0 {
			return fmt.Errorf("%w: %q", ErrOptionsRequired, d.Name)
		}
	case KindCustom:
		if d.Custom == nil || d.Custom.Render == nil {
			return fmt.Errorf("%w: %q", ErrCustomRendererMissing, d.Name)
		}
	}
	return nil
}

// EffectiveDateFormat returns the configured date pattern or the default.
func (d Descriptor) EffectiveDateFormat() string {
	if format := strings.TrimSpace(d.DateFormat); format != "" {
		return format
	}
	if d.ShowTime {
		return DefaultDateTimeFormat
	}
	return DefaultDateFormat
}

// ValidateAll validates every descriptor and rejects duplicate names.
func ValidateAll(descriptors []Descriptor) error {
	seen := make(map[string]struct{}, len(descriptors))
	for _, descriptor := range descriptors {
		if err := descriptor.Validate(); err != nil {
			return err
		}
		if _, exists := seen[descriptor.Name]; exists {
			return fmt.Errorf("field: duplicate field name %q", descriptor.Name)
		}
		seen[descriptor.Name] = struct{}{}
	}
	return nil
}

// Names returns the descriptor names in declaration order.
func Names(descriptors []Descriptor) []string {
	names := make([]string, 0, len(descriptors))
	for _, descriptor := range descriptors {
		names = append(names, descriptor.Name)
	}
	return names
}
