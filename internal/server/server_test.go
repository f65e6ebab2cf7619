package server_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-intake/forms"
	"github.com/goliatone/go-intake/internal/server"
	"github.com/goliatone/go-intake/pkg/actions"
	"github.com/goliatone/go-intake/pkg/identity"
	"github.com/goliatone/go-intake/pkg/patient"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla"
	"github.com/goliatone/go-intake/pkg/storage"
	"github.com/goliatone/go-intake/pkg/testsupport"
	"github.com/goliatone/go-intake/pkg/validation"
)

type fixture struct {
	handler  http.Handler
	users    *identity.Memory
	patients *patient.Memory
	gatherer *prometheus.Registry
}

func newFixture(t *testing.T, csrf bool) *fixture {
	t.Helper()

	contract, err := validation.Default(context.Background())
	if err != nil {
		t.Fatalf("contract: %v", err)
	}
	catalog, err := forms.Default()
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	html, err := vanilla.New()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	users := identity.NewMemory()
	patients := patient.NewMemory()
	documents := storage.NewMemory("documents", "/documents")
	registry := prometheus.NewRegistry()

	srv, err := server.New(server.Deps{
		Actions:   actions.New(users, patients, documents),
		Forms:     catalog,
		Contract:  contract,
		HTML:      html,
		Documents: documents,
		Logger:    zerolog.Nop(),
		Registry:  registry,
		Gatherer:  registry,
		CSRF:      csrf,
	})
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	return &fixture{handler: srv.Handler(), users: users, patients: patients, gatherer: registry}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func basicValues(email string) url.Values {
	return url.Values{
		"name":  {"Ada Lovelace"},
		"email": {email},
		"phone": {"+1 415 555 2671"},
	}
}

func TestBasicFormPage(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	testsupport.AssertContains(t, rec.Body.String(),
		`action="/patients"`,
		`name="email"`,
		`Get Started`,
	)
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("expected no-store, got %q", got)
	}
}

func TestCreateUserRedirectsToSameRecordForDuplicateEmail(t *testing.T) {
	f := newFixture(t, false)

	first := f.do(postForm("/patients", basicValues("ada@example.com")))
	if first.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", first.Code, first.Body.String())
	}
	location := first.Header().Get("Location")
	if !strings.HasPrefix(location, "/patients/") || !strings.HasSuffix(location, "/register") {
		t.Fatalf("unexpected location %q", location)
	}

	second := f.do(postForm("/patients", basicValues("ADA@example.com")))
	if second.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", second.Code)
	}
	if diff := cmp.Diff(location, second.Header().Get("Location")); diff != "" {
		t.Fatalf("duplicate email must resolve to the same user (-want +got):\n%s", diff)
	}

	list, _ := f.users.List(context.Background())
	if len(list) != 1 {
		t.Fatalf("expected a single user, got %d", len(list))
	}
}

func TestCreateUserInvalidInputRendersInlineErrors(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(postForm("/patients", basicValues("not-an-email")))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	testsupport.AssertContains(t, rec.Body.String(), "Invalid email address", `value="Ada Lovelace"`)

	list, _ := f.users.List(context.Background())
	if len(list) != 0 {
		t.Fatalf("validation failure must not create users, got %d", len(list))
	}
}

func TestBasicFormNegotiatesJSON(t *testing.T) {
	f := newFixture(t, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	rec := f.do(req)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON, got %q", ct)
	}
	testsupport.AssertContains(t, rec.Body.String(), `"name":"email"`, `"action":"/patients"`)
}

func TestRegisterFlow(t *testing.T) {
	f := newFixture(t, false)

	created := f.do(postForm("/patients", basicValues("ada@example.com")))
	registerPath := created.Header().Get("Location")

	page := f.do(httptest.NewRequest(http.MethodGet, registerPath, nil))
	if page.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", page.Code)
	}
	testsupport.AssertContains(t, page.Body.String(),
		`value="Ada Lovelace"`,
		`value="ada@example.com"`,
		`John Green`,
		`type="file"`,
	)

	body, contentType := registerBody(t)
	req := httptest.NewRequest(http.MethodPost, registerPath, body)
	req.Header.Set("Content-Type", contentType)
	rec := f.do(req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	appointment := rec.Header().Get("Location")
	if !strings.HasSuffix(appointment, "/new-appointment") {
		t.Fatalf("unexpected location %q", appointment)
	}

	summary := f.do(httptest.NewRequest(http.MethodGet, appointment, nil))
	if summary.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", summary.Code)
	}
	testsupport.AssertContains(t, summary.Body.String(), "Thanks, Ada Lovelace", "John Green", `href="/documents/`)

	userID := strings.TrimSuffix(strings.TrimPrefix(appointment, "/patients/"), "/new-appointment")
	stored, err := f.patients.GetByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("patient: %v", err)
	}
	if stored.IdentificationDocumentURL == "" || !stored.PrivacyConsent || stored.Phone != "+14155552671" {
		t.Fatalf("unexpected stored patient %+v", stored)
	}

	doc := f.do(httptest.NewRequest(http.MethodGet, stored.IdentificationDocumentURL, nil))
	if doc.Code != http.StatusOK {
		t.Fatalf("expected document 200, got %d", doc.Code)
	}
	if diff := cmp.Diff("%PDF-1.4 id", doc.Body.String()); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestUploadLimits(t *testing.T) {
	f := newFixture(t, false)
	registerPath := f.do(postForm("/patients", basicValues("ada@example.com"))).Header().Get("Location")

	cases := []struct {
		name string
		size int
	}{
		{"document above object size", storage.MaxObjectSize + 1},
		{"body above request limit", 13 << 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := multipart.NewWriter(&buf)
			_ = w.WriteField("name", "Ada Lovelace")
			part, err := w.CreateFormFile(actions.DocumentField, "scan.pdf")
			if err != nil {
				t.Fatalf("create file: %v", err)
			}
			_, _ = part.Write(bytes.Repeat([]byte("x"), tc.size))
			if err := w.Close(); err != nil {
				t.Fatalf("close writer: %v", err)
			}

			req := httptest.NewRequest(http.MethodPost, registerPath, &buf)
			req.Header.Set("Content-Type", w.FormDataContentType())
			rec := f.do(req)
			if rec.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}

	if _, err := f.patients.GetByUser(context.Background(), strings.TrimSuffix(strings.TrimPrefix(registerPath, "/patients/"), "/register")); err == nil {
		t.Fatal("no patient should be stored for rejected uploads")
	}
}

func TestRegisterUnknownUser(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/patients/missing/register", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec = f.do(httptest.NewRequest(http.MethodGet, "/patients/missing/new-appointment", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCSRFTokenRequired(t *testing.T) {
	f := newFixture(t, true)

	page := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	testsupport.AssertContains(t, page.Body.String(), `name="_csrf"`)

	rec := f.do(postForm("/patients", basicValues("ada@example.com")))
	if rec.Code == http.StatusSeeOther {
		t.Fatal("post without a token must be rejected")
	}
}

func TestAuxiliaryRoutes(t *testing.T) {
	f := newFixture(t, false)

	f.do(postForm("/patients", basicValues("ada@example.com")))

	cases := map[string]string{
		"/healthz":              `"status":"ok"`,
		"/openapi.yaml":         "operationId: createUser",
		"/api/physicians?q=lei": "Leila Cameron",
		"/assets/intake.css":    "--brand",
		"/metrics":              `intake_submissions_total{form="basic",outcome="success"} 1`,
	}
	for path, want := range cases {
		rec := f.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
			continue
		}
		testsupport.AssertContains(t, rec.Body.String(), want)
	}
}

func registerBody(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"name":                   "Ada Lovelace",
		"email":                  "ada@example.com",
		"phone":                  "+1 415 555 2671",
		"birthDate":              "1990-07-04",
		"gender":                 "Female",
		"address":                "14 Street, New York, NY",
		"occupation":             "Engineer",
		"emergencyContactName":   "Charles Babbage",
		"emergencyContactNumber": "+1 415 555 2672",
		"primaryPhysician":       "John Green",
		"insuranceProvider":      "BlueCross",
		"insurancePolicyNumber":  "ABC123",
		"identificationType":     "Passport",
		"identificationNumber":   "123456789",
		"treatmentConsent":       "on",
		"disclosureConsent":      "on",
		"privacyConsent":         "on",
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	part, err := w.CreateFormFile(actions.DocumentField, "id.pdf")
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	_, _ = part.Write([]byte("%PDF-1.4 id"))
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}
