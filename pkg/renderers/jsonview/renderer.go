// Package jsonview renders a form definition as a JSON document describing
// its fields, current values and errors. Clients that draw their own
// controls negotiate it with Accept: application/json.
package jsonview

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/render"
)

// Document is the rendered payload.
type Document struct {
	ID         string              `json:"id"`
	Operation  string              `json:"operation,omitempty"`
	Title      string              `json:"title,omitempty"`
	Subtitle   string              `json:"subtitle,omitempty"`
	Action     string              `json:"action,omitempty"`
	Method     string              `json:"method"`
	Submit     string              `json:"submit,omitempty"`
	Loading    bool                `json:"loading,omitempty"`
	Fields     []Field             `json:"fields"`
	Hidden     map[string]string   `json:"hidden,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	FormErrors []string            `json:"formErrors,omitempty"`
}

// Field describes one control. ShowLabel is false for checkboxes, which
// carry their label inline.
type Field struct {
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	Label       string         `json:"label,omitempty"`
	ShowLabel   bool           `json:"showLabel"`
	Placeholder string         `json:"placeholder,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	DateFormat  string         `json:"dateFormat,omitempty"`
	ShowTime    bool           `json:"showTime,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
	Options     []field.Option `json:"options,omitempty"`
	Custom      string         `json:"custom,omitempty"`
	Section     string         `json:"section,omitempty"`
	Row         string         `json:"row,omitempty"`
	Value       any            `json:"value,omitempty"`
}

// Renderer implements render.Renderer with encoding/json.
type Renderer struct {
	indent bool
}

var _ render.Renderer = (*Renderer)(nil)

// New returns a renderer; indent pretty-prints the output.
func New(indent bool) *Renderer {
	return &Renderer{indent: indent}
}

func (r *Renderer) Name() string        { return "json" }
func (r *Renderer) ContentType() string { return "application/json" }

// Render encodes the definition. Fields of unknown kind are omitted, the same
// way the HTML renderer draws nothing for them.
func (r *Renderer) Render(_ context.Context, def form.Definition, opts render.RenderOptions) ([]byte, error) {
	doc := Build(def, opts)
	var (
		out []byte
		err error
	)
	if r.indent {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonview: encode %q: %w", def.ID, err)
	}
	return out, nil
}

// Build assembles the document without encoding it.
func Build(def form.Definition, opts render.RenderOptions) Document {
	doc := Document{
		ID:         def.ID,
		Operation:  def.Operation,
		Title:      def.Title,
		Subtitle:   def.Subtitle,
		Action:     opts.Action,
		Method:     opts.HTTPMethod(),
		Submit:     def.SubmitLabel,
		Loading:    opts.Loading,
		Fields:     make([]Field, 0, len(def.Fields)),
		Hidden:     opts.Hidden,
		Errors:     opts.Errors,
		FormErrors: opts.FormErrors,
	}
	for _, desc := range def.Fields {
		if !desc.Kind.Known() {
			continue
		}
		item := Field{
			Kind:        desc.Kind.String(),
			Name:        desc.Name,
			Label:       desc.Label,
			ShowLabel:   desc.Kind.ShowsSharedLabel(),
			Placeholder: desc.Placeholder,
			Icon:        desc.IconRef,
			Disabled:    desc.Disabled,
			Options:     desc.Options,
			Section:     desc.Section,
			Row:         desc.Row,
			Value:       jsonValue(desc, opts.Values[desc.Name]),
		}
		if desc.Kind == field.KindDatePicker {
			item.DateFormat = desc.EffectiveDateFormat()
			item.ShowTime = desc.ShowTime
		}
		if desc.Custom != nil {
			item.Custom = desc.Custom.Name
		}
		doc.Fields = append(doc.Fields, item)
	}
	return doc
}

func jsonValue(desc field.Descriptor, value any) any {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		if desc.ShowTime {
			return v.Format(time.RFC3339)
		}
		return v.Format(time.DateOnly)
	case *field.Attachment:
		if v.Empty() {
			return nil
		}
		return map[string]any{"fileName": v.FileName, "contentType": v.ContentType, "size": v.Size()}
	default:
		return v
	}
}
