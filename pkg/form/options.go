package form

import (
	"context"
	"maps"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-intake/pkg/field"
)

// Validator evaluates the declared rules against the current values.
type Validator interface {
	Validate(values map[string]any) []Issue
}

// ValidatorFunc adapts a function into a Validator.
type ValidatorFunc func(values map[string]any) []Issue

// Validate calls the underlying function.
func (fn ValidatorFunc) Validate(values map[string]any) []Issue {
	return fn(values)
}

// Action performs the remote operation for a submission.
type Action func(ctx context.Context, values map[string]any) (Result, error)

// Transformer rewrites collected values before they reach the action.
type Transformer func(values map[string]any) (map[string]any, error)

// Navigator performs the navigation side effect after a successful submit.
type Navigator func(destination string)

// Destination derives the navigation target from a result.
type Destination func(Result) string

// Option configures a Controller.
type Option func(*Controller)

// WithDescriptors declares the fields the controller binds, in order.
func WithDescriptors(descriptors ...field.Descriptor) Option {
	return func(c *Controller) {
		c.descriptors = append(c.descriptors[:0:0], descriptors...)
	}
}

// WithValidator attaches the rules evaluated on submit.
func WithValidator(validator Validator) Option {
	return func(c *Controller) {
		c.validator = validator
	}
}

// WithTransformer installs a payload transform applied before the action.
func WithTransformer(transform Transformer) Option {
	return func(c *Controller) {
		c.transform = transform
	}
}

// WithNavigator sets the navigation side effect and how its target is
// derived from the action result.
func WithNavigator(navigate Navigator, destination Destination) Option {
	return func(c *Controller) {
		c.navigate = navigate
		c.destination = destination
	}
}

// WithLogger sets the logger used for swallowed submission failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithLoadingHook relays loading flag transitions to the submit control.
func WithLoadingHook(hook func(loading bool)) Option {
	return func(c *Controller) {
		c.onLoading = hook
	}
}

// WithMountContext ties the controller lifetime to ctx. Once ctx is done the
// controller behaves as disposed.
func WithMountContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.parent = ctx
		}
	}
}

// PackageAttachments returns a Transformer that keeps non-empty attachments
// under the named fields as packaged blobs (bytes plus original file name)
// and drops empty ones.
func PackageAttachments(names ...string) Transformer {
	return func(values map[string]any) (map[string]any, error) {
		out := maps.Clone(values)
		if out == nil {
			out = make(map[string]any)
		}
		for _, name := range names {
			attachment, ok := out[name].(*field.Attachment)
			if !ok || attachment.Empty() {
				delete(out, name)
				continue
			}
			packaged := &field.Attachment{
				FileName:    attachment.FileName,
				ContentType: attachment.ContentType,
				Data:        append([]byte(nil), attachment.Data...),
			}
			out[name] = packaged
		}
		return out, nil
	}
}
