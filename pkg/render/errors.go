package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-intake/pkg/form"
)

// ErrorMapping splits issues into inline field messages and form-level
// messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapIssues assigns each issue to its field when the definition declares it.
// Issues for unknown or empty fields become form-level so they are not lost.
func MapIssues(def form.Definition, issues []form.Issue) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	for _, issue := range issues {
		message := strings.TrimSpace(issue.Message)
		if message == "" {
			continue
		}
		name := strings.TrimSpace(issue.Field)
		if _, ok := def.Field(name); !ok {
			mapping.Form = append(mapping.Form, message)
			continue
		}
		mapping.Fields[name] = normalizeMessages(append(mapping.Fields[name], message))
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MapError maps a submission error. Validation errors are split per field;
// anything else becomes a single form-level message.
func MapError(def form.Definition, err error) ErrorMapping {
	if err == nil {
		return ErrorMapping{}
	}
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		return MapIssues(def, verr.Issues)
	}
	return ErrorMapping{Form: normalizeMessages([]string{err.Error()})}
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
