package components

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-intake/pkg/field"
)

// DefaultCalendarIcon is shown beside date pickers without an icon.
const DefaultCalendarIcon = "/assets/icons/calendar.svg"

// NewDefaultRegistry returns a registry with a component for every kind in
// field.Kinds().
func NewDefaultRegistry() *Registry {
	registry := New()
	for _, kind := range field.Kinds() {
		if kind == field.KindCustom {
			continue
		}
		registry.MustRegister(kind, Descriptor{
			Renderer: templateComponentRenderer(partialFor(kind)),
		})
	}
	registry.MustRegister(field.KindCustom, Descriptor{
		Renderer: customRenderer,
	})
	return registry
}

func templateComponentRenderer(partialKey string) Renderer {
	return func(buf *bytes.Buffer, desc field.Descriptor, data ComponentData) error {
		templateName := DefaultPartials()[partialKey]
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}
		if candidate := strings.TrimSpace(data.Partials[partialKey]); candidate != "" {
			templateName = candidate
		}

		rendered, err := data.Template.RenderTemplate(templateName, map[string]any{
			"field": controlView(desc, data.Value),
		})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

// customRenderer renders the custom's partial when it names one and a
// template renderer is configured; otherwise it hands the value and change
// callback to the render function. A descriptor without either renders
// nothing.
func customRenderer(buf *bytes.Buffer, desc field.Descriptor, data ComponentData) error {
	if desc.Custom == nil {
		return nil
	}
	if desc.Custom.Partial != "" && data.Template != nil {
		templateName := DefaultPartials()[desc.Custom.Partial]
		if candidate := strings.TrimSpace(data.Partials[desc.Custom.Partial]); candidate != "" {
			templateName = candidate
		}
		if templateName == "" {
			return fmt.Errorf("components: custom renderer %q: unknown partial %q", desc.Custom.Name, desc.Custom.Partial)
		}
		rendered, err := data.Template.RenderTemplate(templateName, map[string]any{
			"field": CustomView(desc, data.Value),
		})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
	if desc.Custom.Render == nil {
		return nil
	}
	out, err := desc.Custom.Render(data.Value, data.OnChange)
	if err != nil {
		return fmt.Errorf("components: custom renderer %q: %w", desc.Custom.Name, err)
	}
	if data.Sanitize != nil {
		out = data.Sanitize(out)
	}
	buf.WriteString(out)
	return nil
}

func controlView(desc field.Descriptor, value any) map[string]any {
	view := map[string]any{
		"kind":        desc.Kind.String(),
		"name":        desc.Name,
		"id":          ControlID(desc.Name),
		"label":       desc.Label,
		"placeholder": desc.Placeholder,
		"disabled":    desc.Disabled,
	}

	switch desc.Kind {
	case field.KindText:
		view["value"] = textValue(value)
		view["icon"] = iconView(desc.IconRef, desc.IconAlt)
	case field.KindTextArea:
		view["value"] = textValue(value)
	case field.KindPhone:
		view["value"] = textValue(value)
		view["region"] = field.DefaultRegion
	case field.KindDatePicker:
		ref := desc.IconRef
		if ref == "" {
			ref = DefaultCalendarIcon
		}
		alt := desc.IconAlt
		if alt == "" {
			alt = "calendar"
		}
		view["icon"] = iconView(ref, alt)
		view["format"] = desc.EffectiveDateFormat()
		view["showTime"] = desc.ShowTime
		view["timeName"] = desc.Name + field.TimeSuffix
		if at, ok := dateValue(value, desc.EffectiveDateFormat()); ok {
			view["value"] = at.Format("2006-01-02")
			view["time"] = at.Format("15:04")
			view["display"] = field.FormatDate(at, desc.EffectiveDateFormat())
		}
	case field.KindSelect:
		selected := textValue(value)
		options := make([]map[string]any, 0, len(desc.Options))
		for _, opt := range desc.Options {
			options = append(options, map[string]any{
				"value":    opt.Value,
				"label":    opt.Label,
				"image":    opt.Image,
				"selected": opt.Value == selected,
			})
		}
		view["options"] = options
		view["value"] = selected
	case field.KindCheckbox:
		checked, _ := value.(bool)
		view["checked"] = checked
	}
	return view
}

// CustomView is the template data for a custom control: the common control
// fields plus its choices (one per option, with ids and the checked flag)
// and the name of an attached file.
func CustomView(desc field.Descriptor, value any) map[string]any {
	view := controlView(desc, value)

	current, _ := value.(string)
	view["value"] = current
	choices := make([]map[string]any, 0, len(desc.Options))
	for _, opt := range desc.Options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		choices = append(choices, map[string]any{
			"id":      ControlID(desc.Name + "-" + strings.ToLower(opt.Value)),
			"value":   opt.Value,
			"label":   label,
			"checked": opt.Value == current,
		})
	}
	view["options"] = choices

	if attachment, ok := value.(*field.Attachment); ok && !attachment.Empty() {
		view["file"] = attachment.FileName
	}
	return view
}

func textValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func dateValue(value any, pattern string) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		at, ok, err := field.ParseDate(v, pattern)
		if err != nil || !ok {
			return time.Time{}, false
		}
		return at, true
	default:
		return time.Time{}, false
	}
}

func iconView(ref, alt string) map[string]any {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if strings.HasPrefix(ref, "<") {
		svg := SanitizeIcon(ref)
		if svg == "" {
			return nil
		}
		return map[string]any{"svg": svg}
	}
	if alt == "" {
		alt = "icon"
	}
	return map[string]any{"src": ref, "alt": alt}
}
