package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRESTBackendList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/products" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("apikey") != "key123" {
			t.Errorf("apikey header = %q", r.Header.Get("apikey"))
		}
		if r.Header.Get("Authorization") != "Bearer key123" {
			t.Errorf("authorization header = %q", r.Header.Get("Authorization"))
		}
		if got := r.URL.Query().Get("order"); got != "created_at.desc" {
			t.Errorf("order = %q", got)
		}
		json.NewEncoder(w).Encode([]Record{{"id": "a"}, {"id": "b"}})
	}))
	defer srv.Close()

	recs, err := NewRESTBackend(srv.URL, "key123", nil).Table("products").List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 || recs[0]["id"] != "a" {
		t.Errorf("recs = %v", recs)
	}
}

func TestRESTBackendCreateReturnsRepresentation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q", r.Method)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("Prefer = %q", got)
		}
		var rec Record
		json.NewDecoder(r.Body).Decode(&rec)
		rec["id"] = "srv-1"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]Record{rec})
	}))
	defer srv.Close()

	rec, err := NewRESTBackend(srv.URL, "k", nil).Table("clients").
		Create(context.Background(), Record{"name": "Ravi"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec["id"] != "srv-1" || rec["name"] != "Ravi" {
		t.Errorf("rec = %v", rec)
	}
}

func TestRESTBackendUpdateNoMatchIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "eq.missing" {
			t.Errorf("id filter = %q", got)
		}
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	_, err := NewRESTBackend(srv.URL, "k", nil).Table("clients").
		Update(context.Background(), "missing", Record{"name": "x"})
	if !IsNotFound(err) {
		t.Errorf("err = %v, want NotFound kind", err)
	}
}

func TestRESTBackendStatusKinds(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
		name   string
	}{
		{http.StatusUnauthorized, IsAuth, "auth"},
		{http.StatusForbidden, IsAuth, "auth"},
		{http.StatusNotFound, IsNotFound, "not_found"},
		{http.StatusUnprocessableEntity, IsValidation, "validation"},
		{http.StatusConflict, IsValidation, "validation"},
		{http.StatusInternalServerError, IsNetwork, "network"},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"message":"nope"}`))
		}))
		_, err := NewRESTBackend(srv.URL, "k", nil).Table("sales").List(context.Background())
		srv.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if !tt.check(err) {
			t.Errorf("status %d: err = %v, want kind %s", tt.status, err, tt.name)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(KindNetwork, "list", "sales", "", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	var re *Error
	if !errors.As(err, &re) || re.Kind != KindNetwork {
		t.Errorf("errors.As failed: %v", err)
	}
	if re.Error() == "" {
		t.Error("empty error string")
	}
}
