package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/render"
)

const defaultMaxAttempts = 3

// Renderer walks a form's descriptors as terminal prompts. It is the
// terminal counterpart of the HTML renderer: same descriptors, same
// controller, answers written through the controller's change callbacks.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	prompts      map[field.Kind]PromptFunc
	custom       map[string]PromptFunc
	maxAttempts  int
	logger       zerolog.Logger
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       NewSurveyDriver(nil),
		outputFormat: OutputFormatJSON,
		prompts:      KindPrompts(),
		custom:       make(map[string]PromptFunc),
		maxAttempts:  defaultMaxAttempts,
		logger:       zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Render prompts for every field of def, seeded with opts.Values, and
// returns the collected values serialized in the configured format.
func (r *Renderer) Render(ctx context.Context, def form.Definition, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	ctrl := def.NewController(opts.Values, form.WithLogger(r.logger))
	defer ctrl.Dispose()

	for name, messages := range opts.Errors {
		for _, message := range messages {
			r.info(ctx, r.theme.ErrorPrefix+name+": "+message)
		}
	}
	if err := r.Fill(ctx, ctrl); err != nil {
		return nil, err
	}
	return r.serialize(ctrl.Descriptors(), ctrl.State().Values())
}

// Fill prompts for every descriptor the controller owns, then re-prompts the
// fields that fail validation until the form is valid or the attempt budget
// runs out.
func (r *Renderer) Fill(ctx context.Context, ctrl *form.Controller) error {
	descriptors := ctrl.Descriptors()
	pending := descriptors

	for attempt := 0; ; attempt++ {
		for _, desc := range pending {
			if err := r.Prompt(ctx, desc, ctrl); err != nil {
				return err
			}
		}

		err := ctrl.Validate()
		if err == nil {
			return nil
		}
		var invalid *form.ValidationError
		if !errors.As(err, &invalid) {
			return err
		}
		if attempt+1 >= r.maxAttempts {
			return fmt.Errorf("%w: %w", ErrTooManyAttempts, err)
		}

		failing := invalid.FieldErrors()
		pending = pending[:0:0]
		for _, desc := range descriptors {
			messages, ok := failing[desc.Name]
			if !ok {
				continue
			}
			for _, message := range messages {
				r.info(ctx, r.theme.ErrorPrefix+label(desc)+": "+message)
			}
			pending = append(pending, desc)
		}
		if len(pending) == 0 {
			return err
		}
	}
}

// Prompt asks for a single field. Disabled fields and kinds without a prompt
// are skipped.
func (r *Renderer) Prompt(ctx context.Context, desc field.Descriptor, ctrl *form.Controller) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if desc.Disabled {
		return nil
	}

	prompt, ok := r.prompts[desc.Kind]
	if desc.Kind == field.KindCustom && desc.Custom != nil {
		if custom, found := r.custom[desc.Custom.Name]; found {
			prompt, ok = custom, true
		}
	}
	if !ok {
		r.logger.Debug().Str("field", desc.Name).Str("kind", desc.Kind.String()).Msg("tui: no prompt for kind")
		return nil
	}

	current, _ := ctrl.Value(desc.Name)
	return prompt(ctx, r.driver, desc, current, ctrl.OnChange(desc.Name))
}

func (r *Renderer) info(ctx context.Context, msg string) {
	if err := r.driver.Info(ctx, msg); err != nil {
		r.logger.Debug().Err(err).Msg("tui: info message dropped")
	}
}

func (r *Renderer) serialize(descriptors []field.Descriptor, values map[string]any) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		return prettyText(descriptors, values), nil
	}
	out, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("tui: encode values: %w", err)
	}
	return out, nil
}

func prettyText(descriptors []field.Descriptor, values map[string]any) []byte {
	names := field.Names(descriptors)
	declared := make(map[string]struct{}, len(names))
	for _, name := range names {
		declared[name] = struct{}{}
	}
	var extra []string
	for name := range values {
		if _, ok := declared[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	var b strings.Builder
	for _, name := range append(names, extra...) {
		value, ok := values[name]
		if !ok {
			continue
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(prettyValue(value))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func prettyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case time.Time:
		return v.Format(time.DateOnly)
	case *field.Attachment:
		if v.Empty() {
			return "-"
		}
		return fmt.Sprintf("%s (%d bytes)", v.FileName, v.Size())
	default:
		return text(v)
	}
}
