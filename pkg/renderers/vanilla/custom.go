package vanilla

import (
	"sync"

	"github.com/goliatone/go-intake/pkg/field"
	rendertemplate "github.com/goliatone/go-intake/pkg/render/template"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla/components"
)

// Custom renderer names referenced by form definitions.
const (
	CustomGenderRadio  = "genderRadio"
	CustomFileUploader = "fileUploader"
)

// CustomFactory builds the custom render hooks for a descriptor.
type CustomFactory func(desc field.Descriptor) *field.Custom

// CustomRenderers returns the built-in custom renderers keyed by name.
func CustomRenderers() map[string]CustomFactory {
	return map[string]CustomFactory{
		CustomGenderRadio:  RadioGroup,
		CustomFileUploader: FileUploader,
	}
}

// RadioGroup renders one radio input per descriptor option.
func RadioGroup(desc field.Descriptor) *field.Custom {
	return &field.Custom{
		Name:    CustomGenderRadio,
		Partial: components.PartialRadio,
		Render:  standalone(components.PartialRadio, desc),
		Bind: func(in field.Input, name string, onChange field.ChangeFunc) error {
			if raw, ok := in.Value(name); ok {
				onChange(raw)
			}
			return nil
		},
	}
}

// FileUploader renders a single-file input and binds the uploaded file as a
// *field.Attachment. No upload clears the field.
func FileUploader(desc field.Descriptor) *field.Custom {
	return &field.Custom{
		Name:    CustomFileUploader,
		Partial: components.PartialUploader,
		Render:  standalone(components.PartialUploader, desc),
		Bind: func(in field.Input, name string, onChange field.ChangeFunc) error {
			attachment, err := in.File(name)
			if err != nil {
				return err
			}
			if attachment.Empty() {
				onChange(nil)
				return nil
			}
			onChange(attachment)
			return nil
		},
	}
}

var (
	bundledOnce sync.Once
	bundled     rendertemplate.TemplateRenderer
	bundledErr  error
)

// standalone renders a custom partial with the bundled templates. The field
// renderer uses its own engine and theme overrides instead; this path serves
// callers invoking Render directly.
func standalone(partial string, desc field.Descriptor) field.RenderFunc {
	return func(value any, _ field.ChangeFunc) (string, error) {
		bundledOnce.Do(func() {
			bundled, bundledErr = newTemplateEngine(EnginePongo2, TemplatesFS())
		})
		if bundledErr != nil {
			return "", bundledErr
		}
		return bundled.RenderTemplate(components.DefaultPartials()[partial], map[string]any{
			"field": components.CustomView(desc, value),
		})
	}
}
