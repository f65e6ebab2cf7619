package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNilAction is returned when Submit is called without an action.
	ErrNilAction = errors.New("form: action is nil")
	// ErrDisposed is returned when a disposed controller is asked to submit.
	ErrDisposed = errors.New("form: controller disposed")
)

// Issue is a single failed rule. Field is empty for form-level issues.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationError blocks submission while any field fails its rule.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "form: validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Field == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return "form: validation failed: " + strings.Join(parts, "; ")
}

// FieldErrors groups issue messages by field name. Form-level issues are
// keyed by the empty string.
func (e *ValidationError) FieldErrors() map[string][]string {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(e.Issues))
	for _, issue := range e.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// IsValidationError reports whether err carries validation issues.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
