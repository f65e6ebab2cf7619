package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-intake/pkg/field"
	rendertemplate "github.com/goliatone/go-intake/pkg/render/template"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla/components"
)

// FieldRenderer maps a descriptor and its current value to control markup.
// It holds no per-field state; the only side effect a control can have is
// calling the change callback it is given.
type FieldRenderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry
	partials  map[string]string
	sanitize  func(string) string
}

// Render returns the markup for desc. Kinds without a registered component
// render nothing and return no error.
func (r *FieldRenderer) Render(desc field.Descriptor, value any, onChange field.ChangeFunc, errs []string) (string, error) {
	component, ok := r.registry.Descriptor(desc.Kind)
	if !ok {
		return "", nil
	}
	if onChange == nil {
		onChange = func(any) {}
	}

	var control bytes.Buffer
	err := component.Renderer(&control, desc, components.ComponentData{
		Template: r.templates,
		Value:    value,
		OnChange: onChange,
		Partials: r.partials,
		Sanitize: r.sanitize,
	})
	if err != nil {
		return "", fmt.Errorf("vanilla renderer: field %q: %w", desc.Name, err)
	}
	return buildFieldMarkup(desc, control.String(), errs), nil
}

func buildFieldMarkup(desc field.Descriptor, control string, errs []string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="intake-field" data-kind="`)
	builder.WriteString(html.EscapeString(desc.Kind.String()))
	builder.WriteString(`" data-field="`)
	builder.WriteString(html.EscapeString(desc.Name))
	builder.WriteString(`"`)
	if len(errs) > 0 {
		builder.WriteString(` data-invalid="true"`)
	}
	builder.WriteString(">\n")

	if desc.Kind.ShowsSharedLabel() && strings.TrimSpace(desc.Label) != "" {
		builder.WriteString(`    <label for="`)
		builder.WriteString(html.EscapeString(components.ControlID(desc.Name)))
		builder.WriteString(`" class="intake-label">`)
		builder.WriteString(html.EscapeString(desc.Label))
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("    ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	for _, message := range errs {
		builder.WriteString(`    <p class="intake-error">`)
		builder.WriteString(html.EscapeString(message))
		builder.WriteString("</p>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}
