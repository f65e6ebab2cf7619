package physicians

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/field"
)

var sample = []Physician{
	{Name: "John Green", Image: "/img/green.png"},
	{Name: "Leila Cameron"},
	{Name: "Jasmine Lee"},
	{Name: "Evan Peter"},
}

func names(list []Physician) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.Name)
	}
	return out
}

func TestDefaultDirectory(t *testing.T) {
	list, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if len(list) != 9 {
		t.Fatalf("expected 9 physicians, got %d", len(list))
	}
	if list[0].Name != "John Green" {
		t.Fatalf("expected declaration order, got %q first", list[0].Name)
	}

	list[0].Name = "mutated"
	again, _ := Default()
	if again[0].Name != "John Green" {
		t.Fatal("Default must return a copy")
	}
}

func TestLoadSkipsBlankAndDuplicateNames(t *testing.T) {
	src := `
- name: " Ada "
  image: a.png
- name: ""
- name: ada
- name: Grace
`
	list, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []Physician{{Name: "Ada", Image: "a.png"}, {Name: "Grace"}}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	if _, err := Load(nil); err == nil {
		t.Fatal("expected error for nil reader")
	}
}

func TestSearchOrdersWordPrefixFirst(t *testing.T) {
	opts := NewOptions()

	got := names(Search(sample, "le", 0, opts))
	if diff := cmp.Diff([]string{"Leila Cameron", "Jasmine Lee"}, got); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}

	got = names(Search(sample, "ee", 0, opts))
	if diff := cmp.Diff([]string{"John Green", "Jasmine Lee"}, got); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchEmptyQueryModes(t *testing.T) {
	if got := Search(sample, " ", 2, NewOptions()); len(got) != 2 {
		t.Fatalf("expected first 2 physicians, got %v", names(got))
	}
	if got := Search(sample, "", 0, NewOptions(WithEmptySearchMode(EmptySearchNone))); got != nil {
		t.Fatalf("expected no results, got %v", names(got))
	}
	if got := Search(sample, "john", -1, NewOptions()); got != nil {
		t.Fatalf("negative limit must return nothing, got %v", names(got))
	}
}

func TestFieldOptions(t *testing.T) {
	opts, err := FieldOptions()
	if err != nil {
		t.Fatalf("field options: %v", err)
	}
	want := field.Option{Value: "John Green", Label: "John Green", Image: "/assets/icons/user.svg"}
	if diff := cmp.Diff(want, opts[0]); diff != "" {
		t.Fatalf("option mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerSearchAndClamp(t *testing.T) {
	h := Handler(WithPhysicians(sample), WithMaxLimit(1))

	req := httptest.NewRequest(http.MethodGet, "/api/physicians?q=e&limit=10", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content type, got %q", ct)
	}

	var payload optionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []field.Option{{Value: "Evan Peter", Label: "Evan Peter"}}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerNoMatchesReturnsEmptyArray(t *testing.T) {
	h := Handler(WithPhysicians(sample))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/physicians?q=zzz", nil))

	if got := strings.TrimSpace(rec.Body.String()); got != `{"data":[]}` {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestHandlerRejectsMethodsAndGuards(t *testing.T) {
	h := Handler(WithPhysicians(sample))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/physicians", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	guarded := Handler(WithGuard(func(*http.Request) error {
		return StatusError{Code: http.StatusUnauthorized, Err: errors.New("login")}
	}))
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/physicians", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRegisterRoutes(t *testing.T) {
	if got := MountPath("intake/"); got != "/intake/api/physicians" {
		t.Fatalf("unexpected mount path %q", got)
	}

	mux := http.NewServeMux()
	pattern, err := New(WithPhysicians(sample)).RegisterRoutes(mux, "/")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if pattern != "/api/physicians" {
		t.Fatalf("unexpected pattern %q", pattern)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, pattern, nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 200 for HEAD, got %d %q", rec.Code, rec.Body.String())
	}

	if _, err := RegisterRoutes(nil, "/"); err == nil {
		t.Fatal("expected error for nil mux")
	}
}
