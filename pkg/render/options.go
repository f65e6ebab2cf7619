package render

import "github.com/goliatone/go-intake/pkg/field"

// RenderOptions carry the per-request data a renderer needs on top of the
// form definition.
type RenderOptions struct {
	// Action is the submission target. Method defaults to POST.
	Action string
	Method string
	// Values pre-populates controls keyed by field name.
	Values map[string]any
	// Errors holds inline messages keyed by field name.
	Errors map[string][]string
	// FormErrors are shown above the submit control.
	FormErrors []string
	// Hidden fields are emitted as-is (CSRF token, user id).
	Hidden map[string]string
	// Loading renders the submit control in its busy state.
	Loading bool
	// OnChange supplies the change callback handed to custom renderers.
	// Nil means changes are discarded.
	OnChange func(name string) field.ChangeFunc
}

// HTTPMethod returns the configured method or POST.
func (o RenderOptions) HTTPMethod() string {
	if o.Method == "" {
		return "POST"
	}
	return o.Method
}
