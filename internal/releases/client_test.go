package releases

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	gh "github.com/google/go-github/v60/github"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ghClient := gh.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	ghClient.BaseURL = base
	return newWithClient(ghClient)
}

func TestVersionsSkipsNonReleaseTags(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/microsoft/vscode/tags" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `[
			{"name":"1.92.1"},
			{"name":"1.92.0-insider"},
			{"name":"translation/20240101"},
			{"name":"1.92.0"}
		]`)
	}))

	got, err := c.Versions(context.Background(), 10)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	want := []string{"1.92.1", "1.92.0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("versions = %q, want %q", got, want)
	}
}

func TestVersionsHonorsLimit(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"1.92.1"},{"name":"1.92.0"},{"name":"1.91.0"}]`)
	}))

	got, err := c.Versions(context.Background(), 2)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestVersionsAPIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"rate limited"}`, http.StatusForbidden)
	}))

	if _, err := c.Versions(context.Background(), 5); err == nil {
		t.Fatal("expected error from API failure")
	}
}

func TestIsReleaseVersion(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{"1.92.0", true},
		{"0.10.1", true},
		{"1.92.0-insider", false},
		{"1.92.0+build", false},
		{"v1.92.0", false},
		{"translation/20240101", false},
		{"release/1.92", false},
	}
	for _, tt := range tests {
		if got := IsReleaseVersion(tt.tag); got != tt.want {
			t.Errorf("IsReleaseVersion(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}
