package field

import "strings"

// Kind is the closed set of control types a descriptor can request.
type Kind string

const (
	KindText       Kind = "input"
	KindPhone      Kind = "phoneInput"
	KindDatePicker Kind = "datePicker"
	KindSelect     Kind = "select"
	KindTextArea   Kind = "textarea"
	KindCheckbox   Kind = "checkbox"
	KindCustom     Kind = "skeleton"
)

var kinds = []Kind{
	KindText,
	KindPhone,
	KindDatePicker,
	KindSelect,
	KindTextArea,
	KindCheckbox,
	KindCustom,
}

// Kinds returns every supported kind in declaration order. Renderer
// registries are expected to cover the full list.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Known reports whether k belongs to the fixed kind set.
func (k Kind) Known() bool {
	for _, candidate := range kinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ShowsSharedLabel reports whether the form item label slot is used for this
// kind. Checkboxes render their label inline next to the box.
func (k Kind) ShowsSharedLabel() bool {
	return k != KindCheckbox
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind maps a wire name (case-insensitive, with a few aliases) onto a
// Kind. Unrecognised names are returned verbatim so callers can decide how to
// treat them; renderers render nothing for unknown kinds.
func ParseKind(raw string) Kind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "input", "text":
		return KindText
	case "phoneinput", "phone":
		return KindPhone
	case "datepicker", "date":
		return KindDatePicker
	case "select":
		return KindSelect
	case "textarea":
		return KindTextArea
	case "checkbox":
		return KindCheckbox
	case "skeleton", "custom":
		return KindCustom
	default:
		return Kind(strings.TrimSpace(raw))
	}
}
