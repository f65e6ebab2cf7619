package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-intake/api"
	"github.com/goliatone/go-intake/pkg/form"
)

// MessageExtension names the schema extension carrying the message shown
// when a property fails any of its rules.
const MessageExtension = "x-message"

// Operation ids declared by the embedded contract.
const (
	OperationCreateUser      = "createUser"
	OperationRegisterPatient = "registerPatient"
)

// ErrUnknownOperation is returned when the contract has no request schema for
// an operation id.
var ErrUnknownOperation = errors.New("validation: unknown operation")

// Contract holds the request schemas of an OpenAPI document keyed by
// operation id.
type Contract struct {
	doc      *openapi3.T
	requests map[string]*openapi3.Schema
}

// Load parses and validates an OpenAPI document.
func Load(ctx context.Context, raw []byte) (*Contract, error) {
	if len(raw) == 0 {
		return nil, errors.New("validation: contract payload is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("validation: load contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("validation: validate contract: %w", err)
	}

	contract := &Contract{doc: doc, requests: make(map[string]*openapi3.Schema)}
	if doc.Paths != nil {
		for _, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for _, op := range item.Operations() {
				contract.collect(op)
			}
		}
	}
	if len(contract.requests) == 0 {
		return nil, errors.New("validation: contract declares no request schemas")
	}
	return contract, nil
}

// Default loads the contract embedded in the api package.
func Default(ctx context.Context) (*Contract, error) {
	return Load(ctx, api.Contract)
}

func (c *Contract) collect(op *openapi3.Operation) {
	if op == nil || op.OperationID == "" || op.RequestBody == nil || op.RequestBody.Value == nil {
		return
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return
	}
	c.requests[op.OperationID] = media.Schema.Value
}

// Operations lists the operation ids that carry a request schema.
func (c *Contract) Operations() []string {
	out := make([]string, 0, len(c.requests))
	for id := range c.requests {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Title returns the document title.
func (c *Contract) Title() string {
	if c.doc == nil || c.doc.Info == nil {
		return ""
	}
	return c.doc.Info.Title
}

// Rules returns a form.Validator checking values against the request schema
// of operationID.
func (c *Contract) Rules(operationID string) (form.Validator, error) {
	schema, ok := c.requests[operationID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, operationID)
	}
	return form.ValidatorFunc(func(values map[string]any) []form.Issue {
		return validate(schema, values)
	}), nil
}

// Validate checks values against the request schema of operationID.
func (c *Contract) Validate(operationID string, values map[string]any) ([]form.Issue, error) {
	rules, err := c.Rules(operationID)
	if err != nil {
		return nil, err
	}
	return rules.Validate(values), nil
}

func validate(schema *openapi3.Schema, values map[string]any) []form.Issue {
	payload, err := normalize(values)
	if err != nil {
		return []form.Issue{{Message: err.Error()}}
	}

	err = schema.VisitJSON(payload, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	issues := make(map[string]form.Issue)
	for _, leaf := range flatten(err) {
		issue := issueFromError(schema, leaf)
		if _, exists := issues[issue.Field]; exists {
			continue
		}
		issues[issue.Field] = issue
	}

	out := make([]form.Issue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Field < out[j].Field
	})
	return out
}

// normalize converts form state into the JSON shape the schemas describe.
// Undefined (nil) values are dropped so required rules report them missing.
func normalize(values map[string]any) (map[string]any, error) {
	defined := make(map[string]any, len(values))
	for key, value := range values {
		if value == nil {
			continue
		}
		defined[key] = value
	}
	raw, err := json.Marshal(defined)
	if err != nil {
		return nil, fmt.Errorf("validation: encode values: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("validation: decode values: %w", err)
	}
	return payload, nil
}

func flatten(err error) []error {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []error
		for _, item := range multi {
			out = append(out, flatten(item)...)
		}
		return out
	}
	return []error{err}
}

func issueFromError(root *openapi3.Schema, err error) form.Issue {
	var schemaErr *openapi3.SchemaError
	if !errors.As(err, &schemaErr) {
		return form.Issue{Message: strings.TrimSpace(err.Error())}
	}

	pointer := schemaErr.JSONPointer()
	name := ""
	if len(pointer) > 0 {
		name = pointer[0]
	}

	message := strings.TrimSpace(schemaErr.Reason)
	if custom := propertyMessage(root, name); custom != "" {
		message = custom
	} else if schemaErr.SchemaField == "required" {
		message = "Required"
	}
	return form.Issue{Field: name, Message: message}
}

func propertyMessage(root *openapi3.Schema, name string) string {
	if root == nil || name == "" {
		return ""
	}
	ref, ok := root.Properties[name]
	if !ok || ref == nil || ref.Value == nil {
		return ""
	}
	message, _ := ref.Value.Extensions[MessageExtension].(string)
	return strings.TrimSpace(message)
}
