package components

import "github.com/goliatone/go-intake/pkg/field"

// Partial keys a theme manifest can override, one per template-backed kind.
const (
	PartialInput    = "forms.input"
	PartialPhone    = "forms.phone"
	PartialDate     = "forms.date"
	PartialSelect   = "forms.select"
	PartialTextArea = "forms.textarea"
	PartialCheckbox = "forms.checkbox"
)

// Partial keys for the built-in custom controls.
const (
	PartialRadio    = "forms.radio"
	PartialUploader = "forms.uploader"
)

const templatePrefix = "templates/components/"

// DefaultPartials maps each partial key to its built-in template.
func DefaultPartials() map[string]string {
	return map[string]string{
		PartialInput:    templatePrefix + "input.tmpl",
		PartialPhone:    templatePrefix + "phone.tmpl",
		PartialDate:     templatePrefix + "date.tmpl",
		PartialSelect:   templatePrefix + "select.tmpl",
		PartialTextArea: templatePrefix + "textarea.tmpl",
		PartialCheckbox: templatePrefix + "checkbox.tmpl",
		PartialRadio:    templatePrefix + "radio.tmpl",
		PartialUploader: templatePrefix + "uploader.tmpl",
	}
}

// ControlID is the element id used for a field's control.
func ControlID(name string) string {
	if name == "" {
		return ""
	}
	return "intake-" + name
}

func partialFor(kind field.Kind) string {
	switch kind {
	case field.KindText:
		return PartialInput
	case field.KindPhone:
		return PartialPhone
	case field.KindDatePicker:
		return PartialDate
	case field.KindSelect:
		return PartialSelect
	case field.KindTextArea:
		return PartialTextArea
	case field.KindCheckbox:
		return PartialCheckbox
	default:
		return ""
	}
}
