package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewer(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"v0.4.2", "0.4.1", true},
		{"0.4.1", "v0.4.1", false},
		{"v0.5", "0.4.9", true},
		{"v0.3.0", "0.4.1", false},
		{"nightly", "0.4.1", false},
		{"v1.0.0", "dev", false},
	}
	for _, tt := range tests {
		if got := Newer(tt.latest, tt.current); got != tt.want {
			t.Fatalf("Newer(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v0.5.0","html_url":"https://example.invalid/r/v0.5.0"}`))
	}))
	defer srv.Close()

	res, err := NewChecker(srv.URL).Check(context.Background(), "0.4.1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.Available || res.Latest != "v0.5.0" {
		t.Fatalf("Check = %+v", res)
	}
}

func TestCheckStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := NewChecker(srv.URL).Check(context.Background(), "0.4.1"); err == nil {
		t.Fatalf("Check succeeded on 403")
	}
}
