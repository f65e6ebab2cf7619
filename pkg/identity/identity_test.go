package identity_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-intake/pkg/identity"
	"github.com/goliatone/go-intake/pkg/testsupport"
)

func TestMemoryRejectsDuplicateEmail(t *testing.T) {
	ctx := testsupport.Context()
	users := identity.NewMemory()

	first, err := users.Create(ctx, identity.NewID(), "ada@example.com", "+14155552671", "Ada")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = users.Create(ctx, identity.NewID(), "ADA@example.com", "", "Ada again")
	if !identity.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	found, err := users.List(ctx, identity.Equal("$email", "ada@example.com"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]identity.User{*first}, found); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryGetUnknown(t *testing.T) {
	_, err := identity.NewMemory().Get(testsupport.Context(), "missing")
	if !errors.Is(err, identity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFilterHonoursLimit(t *testing.T) {
	users := []identity.User{
		{ID: "1", Name: "Ada"},
		{ID: "2", Name: "Ada"},
		{ID: "3", Name: "Grace"},
	}
	got := identity.Filter(users, identity.Equal(identity.AttrName, "ada"), identity.Limit(1))
	if diff := cmp.Diff([]identity.User{{ID: "1", Name: "Ada"}}, got); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestClientCreateSendsProjectHeaders(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/users" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Appwrite-Project") != "carepulse" || r.Header.Get("X-Appwrite-Key") != "secret" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"$id": got["userId"], "email": got["email"], "name": got["name"], "phone": got["phone"]})
	}))
	defer srv.Close()

	client, err := identity.NewClient(srv.URL+"/v1", "carepulse", identity.WithAPIKey("secret"), identity.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	user, err := client.Create(testsupport.Context(), "u-1", "ada@example.com", "+14155552671", "Ada")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	want := &identity.User{ID: "u-1", Email: "ada@example.com", Name: "Ada", Phone: "+14155552671"}
	if diff := cmp.Diff(want, user, cmpopts.IgnoreFields(identity.User{}, "CreatedAt")); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}
	if got["userId"] != "u-1" {
		t.Fatalf("unexpected payload %v", got)
	}
}

func TestClientMapsConflictAndListQueries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"A user with the same id, email, or phone already exists.","code":409,"type":"user_already_exists"}`))
		case http.MethodGet:
			queries := r.URL.Query()["queries[]"]
			want := []string{`{"method":"equal","attribute":"$email","values":["ada@example.com"]}`}
			if diff := cmp.Diff(want, queries); diff != "" {
				t.Errorf("queries mismatch (-want +got):\n%s", diff)
			}
			_, _ = w.Write([]byte(`{"total":1,"users":[{"$id":"u-1","email":"ada@example.com"}]}`))
		}
	}))
	defer srv.Close()

	client, err := identity.NewClient(srv.URL, "carepulse")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Create(testsupport.Context(), "", "ada@example.com", "", "Ada")
	if !identity.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var apiErr *identity.Error
	if !errors.As(err, &apiErr) || apiErr.Type != "user_already_exists" {
		t.Fatalf("expected typed error, got %#v", err)
	}

	users, err := client.List(testsupport.Context(), identity.Equal("$email", "ada@example.com"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 || users[0].ID != "u-1" {
		t.Fatalf("unexpected users %+v", users)
	}
}

func TestClientGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"User not found","code":404}`))
	}))
	defer srv.Close()

	client, err := identity.NewClient(srv.URL, "p")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Get(testsupport.Context(), "nope"); !errors.Is(err, identity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	if _, err := identity.NewClient(" ", "p"); err == nil {
		t.Fatal("expected error")
	}
}
