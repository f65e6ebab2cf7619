package vanilla_test

import (
	"strings"
	"testing"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla"
	"github.com/goliatone/go-intake/pkg/testsupport"
)

func newRenderer(t *testing.T, opts ...vanilla.Option) *vanilla.Renderer {
	t.Helper()
	renderer, err := vanilla.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func TestCheckboxLabelNeverUsesSharedSlot(t *testing.T) {
	renderer := newRenderer(t)

	out, err := renderer.Fields().Render(field.Descriptor{
		Kind:  field.KindCheckbox,
		Name:  "privacyConsent",
		Label: "I acknowledge that I have reviewed and agree to the privacy policy",
	}, true, nil, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	testsupport.AssertNotContains(t, out, `class="intake-label"`)
	testsupport.AssertContains(t, out,
		`class="intake-checkbox-label"`,
		`I acknowledge that I have reviewed and agree to the privacy policy`,
		` checked`,
	)
	if got := strings.Count(out, "agree to the privacy policy"); got != 1 {
		t.Fatalf("expected label once, got %d:\n%s", got, out)
	}
}

func TestSharedLabelRenderedForOtherKinds(t *testing.T) {
	renderer := newRenderer(t)

	for _, kind := range field.Kinds() {
		if kind == field.KindCheckbox || kind == field.KindCustom {
			continue
		}
		desc := field.Descriptor{
			Kind:    kind,
			Name:    "sample",
			Label:   "Sample",
			Options: []field.Option{{Value: "a", Label: "A"}},
		}
		out, err := renderer.Fields().Render(desc, nil, nil, nil)
		if err != nil {
			t.Fatalf("%s: render: %v", kind, err)
		}
		testsupport.AssertContains(t, out, `<label for="intake-sample" class="intake-label">Sample</label>`)
	}
}

func TestUnknownKindRendersNothing(t *testing.T) {
	renderer := newRenderer(t)

	out, err := renderer.Fields().Render(field.Descriptor{
		Kind:  field.Kind("colorWheel"),
		Name:  "favourite",
		Label: "Favourite colour",
	}, "red", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestCustomFieldReceivesValueAndChangeCallback(t *testing.T) {
	renderer := newRenderer(t)

	var seen any
	var changed []any
	desc := field.Descriptor{
		Kind: field.KindCustom,
		Name: "gender",
		Custom: &field.Custom{
			Name: "badge",
			Render: func(value any, onChange field.ChangeFunc) (string, error) {
				seen = value
				onChange("Female")
				return `<span class="badge">ok</span><script>alert(1)</script>`, nil
			},
		},
	}

	out, err := renderer.Fields().Render(desc, "Male", func(v any) { changed = append(changed, v) }, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if seen != "Male" {
		t.Fatalf("expected current value, got %v", seen)
	}
	if diff := cmp.Diff([]any{"Female"}, changed); diff != "" {
		t.Fatalf("change callback mismatch (-want +got):\n%s", diff)
	}
	testsupport.AssertContains(t, out, `<span class="badge">ok</span>`)
	testsupport.AssertNotContains(t, out, "<script>")
}

func TestCustomFieldWithoutChangeCallbackIsSafe(t *testing.T) {
	renderer := newRenderer(t)

	desc := field.Descriptor{
		Kind: field.KindCustom,
		Name: "x",
		Custom: &field.Custom{
			Render: func(_ any, onChange field.ChangeFunc) (string, error) {
				onChange("ignored")
				return "", nil
			},
		},
	}
	if _, err := renderer.Fields().Render(desc, nil, nil, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
}

func TestFieldErrorsRenderedInline(t *testing.T) {
	renderer := newRenderer(t)

	out, err := renderer.Fields().Render(field.Descriptor{
		Kind:  field.KindText,
		Name:  "email",
		Label: "Email",
	}, "nope", nil, []string{"Invalid email address"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	testsupport.AssertContains(t, out,
		`data-invalid="true"`,
		`<p class="intake-error">Invalid email address</p>`,
		`value="nope"`,
	)
}

func TestRenderFormPage(t *testing.T) {
	rc := vanilla.RendererConfig(mustSelect(t, "", ""))
	renderer := newRenderer(t,
		vanilla.WithTheme(rc),
		vanilla.WithClock(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }),
	)

	def := form.Definition{
		ID:          "basic",
		Title:       "Hi there",
		Subtitle:    "Schedule your first appointment.",
		SubmitLabel: "Get Started",
		Fields: []field.Descriptor{
			{Kind: field.KindText, Name: "name", Label: "Full name"},
			{Kind: field.KindText, Name: "email", Label: "Email", Row: "contact"},
			{Kind: field.KindPhone, Name: "phone", Label: "Phone number", Row: "contact"},
			{Kind: field.Kind("unsupported"), Name: "ghost", Label: "Ghost"},
		},
	}

	out, err := renderer.Render(testsupport.Context(), def, render.RenderOptions{
		Action: "/patients",
		Values: map[string]any{"name": "Ada"},
		Hidden: map[string]string{"_csrf": "token-1"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	testsupport.AssertContains(t, html,
		`<title>Hi there</title>`,
		`href="/assets/intake.css"`,
		`data-theme="carepulse"`,
		`--brand: #24AE7C`,
		`action="/patients"`,
		`method="POST"`,
		`<input type="hidden" name="_csrf" value="token-1">`,
		`value="Ada"`,
		`type="tel"`,
		`Get Started`,
		`2024 All Rights Reserved`,
	)
	testsupport.AssertNotContains(t, html, "Ghost", "Loading ...")

	if got := strings.Count(html, `class="intake-row"`); got != 2 {
		t.Fatalf("expected 2 rows (name, contact), got %d", got)
	}
}

func TestGoTemplateEngineRendersSamePage(t *testing.T) {
	clock := vanilla.WithClock(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) })
	rc := vanilla.RendererConfig(mustSelect(t, "", ""))
	pongo := newRenderer(t, vanilla.WithTheme(rc), clock)
	goTemplate := newRenderer(t, vanilla.WithTheme(rc), clock, vanilla.WithTemplateEngine(vanilla.EngineGoTemplate))

	def := form.Definition{
		ID:          "basic",
		Title:       "Hi there",
		SubmitLabel: "Get Started",
		Fields: []field.Descriptor{
			{Kind: field.KindText, Name: "name", Label: "Full name"},
			{Kind: field.KindPhone, Name: "phone", Label: "Phone number"},
			{Kind: field.KindCheckbox, Name: "privacyConsent", Label: "Privacy"},
		},
	}
	opts := render.RenderOptions{
		Action: "/patients",
		Values: map[string]any{"name": "Ada", "privacyConsent": true},
		Hidden: map[string]string{"_csrf": "token-1"},
	}

	want, err := pongo.Render(testsupport.Context(), def, opts)
	if err != nil {
		t.Fatalf("pongo2 render: %v", err)
	}
	got, err := goTemplate.Render(testsupport.Context(), def, opts)
	if err != nil {
		t.Fatalf("go-template render: %v", err)
	}
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("engines disagree (-pongo2 +go-template):\n%s", diff)
	}
	testsupport.AssertContains(t, string(got), "2024 All Rights Reserved")

	view, err := goTemplate.RenderView("Registered", "templates/patient.tmpl", map[string]any{
		"patient": map[string]any{"name": "Ada Lovelace", "phone": "+14155552671"},
	})
	if err != nil {
		t.Fatalf("render view: %v", err)
	}
	testsupport.AssertContains(t, string(view), "Thanks, Ada Lovelace", "+1 415-555-2671")
}

func TestUnknownTemplateEngine(t *testing.T) {
	if _, err := vanilla.New(vanilla.WithTemplateEngine("jet")); err == nil {
		t.Fatal("expected unknown engine error")
	}
}

func TestRenderLoadingState(t *testing.T) {
	renderer := newRenderer(t, vanilla.WithTheme(vanilla.RendererConfig(mustSelect(t, "", ""))))

	def := form.Definition{
		ID:     "basic",
		Fields: []field.Descriptor{{Kind: field.KindText, Name: "name", Label: "Name"}},
	}
	out, err := renderer.RenderForm(def, render.RenderOptions{Loading: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	testsupport.AssertContains(t, out, "disabled aria-busy", "Loading ...", `src="/assets/icons/loader.svg"`)
}

func TestContrastVariantOverridesCheckboxPartial(t *testing.T) {
	renderer := newRenderer(t, vanilla.WithTheme(vanilla.RendererConfig(mustSelect(t, "", "contrast"))))

	out, err := renderer.Fields().Render(field.Descriptor{
		Kind:  field.KindCheckbox,
		Name:  "treatmentConsent",
		Label: "I consent to treatment",
	}, false, nil, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	testsupport.AssertContains(t, out, "intake-checkbox--contrast")
	testsupport.AssertNotContains(t, out, `class="intake-label"`, " checked")
}

func TestSelectorRejectsUnknownThemeAndVariant(t *testing.T) {
	selector := vanilla.NewSelector("", "", vanilla.DefaultManifest())
	if _, err := selector.Select("missing", ""); err == nil {
		t.Fatal("expected unknown theme error")
	}
	if _, err := selector.Select("", "sepia"); err == nil {
		t.Fatal("expected unknown variant error")
	}
}

func TestRendererConfigMergesVariantTokens(t *testing.T) {
	rc := vanilla.RendererConfig(mustSelect(t, "", "light"))
	if rc.Tokens["surface"] != "#FFFFFF" {
		t.Fatalf("expected light surface token, got %q", rc.Tokens["surface"])
	}
	if rc.Tokens["brand"] != "#24AE7C" {
		t.Fatalf("expected inherited brand token, got %q", rc.Tokens["brand"])
	}
	if rc.CSSVars["--surface"] != "#FFFFFF" {
		t.Fatalf("expected css var, got %q", rc.CSSVars["--surface"])
	}
}

func TestRenderViewWrapsPatientSummary(t *testing.T) {
	renderer := newRenderer(t)

	out, err := renderer.RenderView("Registered", "templates/patient.tmpl", map[string]any{
		"patient": map[string]any{
			"name":  "Ada Lovelace",
			"email": "ada@example.com",
			"phone": "+14155552671",
		},
	})
	if err != nil {
		t.Fatalf("render view: %v", err)
	}
	testsupport.AssertContains(t, string(out), "Thanks, Ada Lovelace", "ada@example.com", "+1 415-555-2671")
}

func TestRadioGroupAndUploaderRender(t *testing.T) {
	renderer := newRenderer(t)

	gender := field.Descriptor{
		Kind:    field.KindCustom,
		Name:    "gender",
		Label:   "Gender",
		Options: []field.Option{{Value: "Male"}, {Value: "Female"}, {Value: "Other"}},
	}
	gender.Custom = vanilla.RadioGroup(gender)

	out, err := renderer.Fields().Render(gender, "Female", nil, nil)
	if err != nil {
		t.Fatalf("render radio: %v", err)
	}
	testsupport.AssertContains(t, out, `type="radio"`, `value="Female" checked`)

	upload := field.Descriptor{Kind: field.KindCustom, Name: "identificationDocument", Label: "Scanned copy"}
	upload.Custom = vanilla.FileUploader(upload)

	out, err = renderer.Fields().Render(upload, &field.Attachment{FileName: "id.png", Data: []byte{1}}, nil, nil)
	if err != nil {
		t.Fatalf("render uploader: %v", err)
	}
	testsupport.AssertContains(t, out, `type="file"`, "id.png")
}

func TestContrastVariantOverridesRadioPartial(t *testing.T) {
	renderer := newRenderer(t, vanilla.WithTheme(vanilla.RendererConfig(mustSelect(t, "", "contrast"))))

	gender := field.Descriptor{
		Kind:    field.KindCustom,
		Name:    "gender",
		Label:   "Gender",
		Options: []field.Option{{Value: "Male"}, {Value: "Female"}},
	}
	gender.Custom = vanilla.RadioGroup(gender)

	out, err := renderer.Fields().Render(gender, "Male", nil, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	testsupport.AssertContains(t, out, "intake-radio-group--contrast", `value="Male" checked`)
}

func TestCustomRenderMatchesTemplatePartial(t *testing.T) {
	renderer := newRenderer(t)

	upload := field.Descriptor{Kind: field.KindCustom, Name: "identificationDocument", Label: "Scanned copy"}
	upload.Custom = vanilla.FileUploader(upload)
	attachment := &field.Attachment{FileName: "<id>.png", Data: []byte{1}}

	direct, err := upload.Custom.Render(attachment, nil)
	if err != nil {
		t.Fatalf("render directly: %v", err)
	}
	testsupport.AssertContains(t, direct, `type="file"`, `id="intake-identificationDocument"`, "&lt;id&gt;.png")

	wrapped, err := renderer.Fields().Render(upload, attachment, nil, nil)
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSpace(direct), "\n") {
		testsupport.AssertContains(t, wrapped, strings.TrimSpace(line))
	}
}

func TestFileUploaderBind(t *testing.T) {
	desc := field.Descriptor{Kind: field.KindCustom, Name: "doc"}
	custom := vanilla.FileUploader(desc)

	var got []any
	record := func(v any) { got = append(got, v) }

	if err := custom.Bind(field.MapInput{}, "doc", record); err != nil {
		t.Fatalf("bind empty: %v", err)
	}
	attachment := &field.Attachment{FileName: "id.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
	in := field.MapInput{Files: map[string]*field.Attachment{"doc": attachment}}
	if err := custom.Bind(in, "doc", record); err != nil {
		t.Fatalf("bind file: %v", err)
	}

	if diff := cmp.Diff([]any{nil, attachment}, got); diff != "" {
		t.Fatalf("bind mismatch (-want +got):\n%s", diff)
	}
}

func mustSelect(t *testing.T, name, variant string) *theme.Selection {
	t.Helper()
	selection, err := vanilla.NewSelector("", "", vanilla.DefaultManifest()).Select(name, variant)
	if err != nil {
		t.Fatalf("select theme: %v", err)
	}
	return selection
}
