package form

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-intake/pkg/field"
)

// Status is the submission lifecycle position of a Controller.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusNavigated
)

func (s Status) String() string {
	switch s {
	case StatusSubmitting:
		return "submitting"
	case StatusNavigated:
		return "navigated"
	default:
		return "idle"
	}
}

// Controller owns the state of one mounted form: it seeds values, binds
// submitted input through the field descriptors, validates on submit, calls
// exactly one action, and relays the loading flag to the submit control.
//
// A Controller is not meant to be shared across requests.
type Controller struct {
	mu sync.Mutex

	descriptors []field.Descriptor
	validator   Validator
	transform   Transformer
	navigate    Navigator
	destination Destination
	onLoading   func(bool)
	logger      zerolog.Logger

	parent  context.Context
	mounted context.Context
	dispose context.CancelFunc

	state   *State
	loading bool
	status  Status
	issues  []Issue
}

// New constructs a Controller with the supplied options.
func New(opts ...Option) *Controller {
	c := &Controller{
		logger: zerolog.Nop(),
		parent: context.Background(),
		state:  NewState(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.mounted, c.dispose = context.WithCancel(c.parent)
	return c
}

// Descriptors returns the declared fields in order.
func (c *Controller) Descriptors() []field.Descriptor {
	return append([]field.Descriptor(nil), c.descriptors...)
}

// Initialize replaces the state with defaults. Keys follow descriptor order
// first, then any remaining keys sorted by name. Rules are not evaluated.
func (c *Controller) Initialize(defaults map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := NewState()
	seen := make(map[string]struct{}, len(defaults))
	for _, desc := range c.descriptors {
		value, ok := defaults[desc.Name]
		if !ok {
			continue
		}
		state.Set(desc.Name, value)
		seen[desc.Name] = struct{}{}
	}

	rest := make([]string, 0, len(defaults))
	for key := range defaults {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		state.Set(key, defaults[key])
	}

	c.state = state
	c.issues = nil
}

// OnChange returns the change callback that writes name into the state.
func (c *Controller) OnChange(name string) field.ChangeFunc {
	return func(value any) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.state.Set(name, value)
	}
}

// Bind converts submitted input into typed values for every declared field.
// Fields that fail to decode keep their previous value and are reported
// together as a *ValidationError once every field has been visited.
func (c *Controller) Bind(in field.Input) error {
	if in == nil {
		return nil
	}
	var issues []Issue
	for _, desc := range c.descriptors {
		if err := field.Bind(desc, in, c.OnChange(desc.Name)); err != nil {
			c.logger.Debug().Err(err).Str("field", desc.Name).Msg("form: bind failed")
			issues = append(issues, Issue{Field: desc.Name, Message: "Invalid value"})
		}
	}
	if len(issues) > 0 {
		c.mu.Lock()
		c.issues = append([]Issue(nil), issues...)
		c.mu.Unlock()
		return &ValidationError{Issues: issues}
	}
	return nil
}

// Validate evaluates the attached rules against the current values. The
// issues are kept for rendering until the next Initialize or Validate.
func (c *Controller) Validate() error {
	c.mu.Lock()
	validator := c.validator
	values := c.state.Values()
	c.mu.Unlock()

	var issues []Issue
	if validator != nil {
		issues = validator.Validate(values)
	}

	c.mu.Lock()
	c.issues = append([]Issue(nil), issues...)
	c.mu.Unlock()

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// Submit validates the state and, when it passes, invokes action once.
// A failing rule blocks the call and leaves the loading flag untouched.
// Otherwise the loading flag is raised for the duration of the call and
// cleared exactly once afterwards, unless the controller was disposed in
// the meantime. Navigation happens only for results that carry an id.
func (c *Controller) Submit(ctx context.Context, action Action) (Result, error) {
	if action == nil {
		return Result{}, ErrNilAction
	}
	if c.Disposed() {
		return Result{}, ErrDisposed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.Validate(); err != nil {
		return Result{}, err
	}

	c.begin()
	defer c.settle()

	c.mu.Lock()
	values := c.state.Values()
	transform := c.transform
	c.mu.Unlock()

	if transform != nil {
		packaged, err := transform(values)
		if err != nil {
			c.logger.Error().Err(err).Msg("form: transform submission")
			return Result{}, fmt.Errorf("form: transform submission: %w", err)
		}
		values = packaged
	}

	result, err := action(ctx, values)
	if err != nil {
		c.logger.Error().Err(err).Msg("form: submit failed")
		return Result{}, err
	}

	if !result.HasRecord() {
		c.logger.Debug().
			Str("outcome", result.Outcome.String()).
			Str("reason", result.Reason).
			Msg("form: navigation not taken")
		return result, nil
	}

	c.follow(result)
	return result, nil
}

func (c *Controller) begin() {
	c.mu.Lock()
	c.loading = true
	c.status = StatusSubmitting
	hook := c.onLoading
	c.mu.Unlock()

	if hook != nil {
		hook(true)
	}
}

func (c *Controller) follow(result Result) {
	if c.navigate == nil || c.destination == nil {
		return
	}
	target := c.destination(result)
	if target == "" {
		return
	}
	if c.Disposed() {
		return
	}
	c.navigate(target)

	c.mu.Lock()
	c.status = StatusNavigated
	c.mu.Unlock()
}

func (c *Controller) settle() {
	if c.Disposed() {
		return
	}

	c.mu.Lock()
	c.loading = false
	if c.status == StatusSubmitting {
		c.status = StatusIdle
	}
	hook := c.onLoading
	c.mu.Unlock()

	if hook != nil {
		hook(false)
	}
}

// Dispose unmounts the controller. Pending cleanups become no-ops.
func (c *Controller) Dispose() {
	c.dispose()
}

// Disposed reports whether the controller was disposed or its mount context
// ended.
func (c *Controller) Disposed() bool {
	return c.mounted.Err() != nil
}

// Loading reports whether a submission is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Status reports the lifecycle position.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// State returns a snapshot of the current values.
func (c *Controller) State() *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Value returns the current value for name.
func (c *Controller) Value(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Get(name)
}

// Issues returns the issues recorded by the last validation.
func (c *Controller) Issues() []Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Issue(nil), c.issues...)
}
