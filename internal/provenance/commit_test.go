package provenance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCommitHashOverride(t *testing.T) {
	r := NewCommitResolver(Options{Override: " deadbee ", Owner: "o", Repo: "r"})
	r.git = func(context.Context) (string, error) {
		t.Fatalf("git must not run when overridden")
		return "", nil
	}
	if got := r.CommitHash(context.Background()); got != "deadbee" {
		t.Fatalf("got %q", got)
	}
}

func TestCommitHashFromGitHub(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/signal/commits/main" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing token")
		}
		_, _ = w.Write([]byte(`{"sha":"0123456789abcdef"}`))
	}))
	defer srv.Close()

	r := NewCommitResolver(Options{Token: "tok", Owner: "octo", Repo: "signal", APIURL: srv.URL})
	if got := r.CommitHash(context.Background()); got != "0123456" {
		t.Fatalf("got %q", got)
	}
}

func TestCommitHashFallsBackToGit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewCommitResolver(Options{Owner: "octo", Repo: "signal", APIURL: srv.URL})
	r.git = func(context.Context) (string, error) { return "abc1234", nil }
	if got := r.CommitHash(context.Background()); got != "abc1234" {
		t.Fatalf("got %q", got)
	}
}

func TestCommitHashUnknown(t *testing.T) {
	r := NewCommitResolver(Options{})
	r.git = func(context.Context) (string, error) { return "", errors.New("not a git repository") }
	if got := r.CommitHash(context.Background()); got != Unknown {
		t.Fatalf("got %q", got)
	}
}
