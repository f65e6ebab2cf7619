package jsonview_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/renderers/jsonview"
	"github.com/goliatone/go-intake/pkg/testsupport"
)

func TestBuildSkipsUnknownKindsAndFlagsCheckboxLabel(t *testing.T) {
	def := form.Definition{
		ID: "register",
		Fields: []field.Descriptor{
			{Kind: field.KindDatePicker, Name: "birthDate", Label: "Date of birth"},
			{Kind: field.Kind("hologram"), Name: "ghost"},
			{Kind: field.KindCheckbox, Name: "privacyConsent", Label: "I agree"},
		},
	}
	doc := jsonview.Build(def, render.RenderOptions{
		Values: map[string]any{
			"birthDate":      time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC),
			"privacyConsent": true,
		},
	})

	want := []jsonview.Field{
		{Kind: "datePicker", Name: "birthDate", Label: "Date of birth", ShowLabel: true, DateFormat: field.DefaultDateFormat, Value: "1990-03-14"},
		{Kind: "checkbox", Name: "privacyConsent", Label: "I agree", ShowLabel: false, Value: true},
	}
	if diff := cmp.Diff(want, doc.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if doc.Method != "POST" {
		t.Fatalf("expected default method, got %q", doc.Method)
	}
}

func TestRenderEncodesAttachmentsWithoutBytes(t *testing.T) {
	def := form.Definition{
		ID: "register",
		Fields: []field.Descriptor{{
			Kind:   field.KindCustom,
			Name:   "identificationDocument",
			Custom: &field.Custom{Name: "fileUploader"},
		}},
	}
	out, err := jsonview.New(false).Render(testsupport.Context(), def, render.RenderOptions{
		Values: map[string]any{
			"identificationDocument": &field.Attachment{FileName: "id.png", ContentType: "image/png", Data: []byte{1, 2, 3}},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var doc struct {
		Fields []struct {
			Custom string         `json:"custom"`
			Value  map[string]any `json:"value"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{"fileName": "id.png", "contentType": "image/png", "size": float64(3)}
	if diff := cmp.Diff(want, doc.Fields[0].Value); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
	if doc.Fields[0].Custom != "fileUploader" {
		t.Fatalf("unexpected custom name %q", doc.Fields[0].Custom)
	}
}
