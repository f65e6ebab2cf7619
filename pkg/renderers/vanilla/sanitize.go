package vanilla

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	controlPolicyOnce sync.Once
	controlPolicy     *bluemonday.Policy
)

// SanitizeControl cleans markup returned by custom renderers. Form controls
// and their labels survive; scripts, event handlers and styles do not.
func SanitizeControl(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return controlSanitizer().Sanitize(raw)
}

func controlSanitizer() *bluemonday.Policy {
	controlPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowElements("input", "label", "fieldset", "legend", "span", "div")
		policy.AllowAttrs("type", "name", "value", "checked", "accept", "disabled", "id").OnElements("input")
		policy.AllowAttrs("for").OnElements("label")
		policy.AllowAttrs("class").Globally()
		policy.AllowAttrs("role").Globally()
		policy.AllowDataAttributes()
		controlPolicy = policy
	})
	return controlPolicy
}
