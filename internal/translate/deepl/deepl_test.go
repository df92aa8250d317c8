package deepl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bravuralion/td2-chat-translator/internal/translate"
)

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/translate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "DeepL-Auth-Key secret" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if r.PostForm.Get("target_lang") != "EN-GB" || r.PostForm.Get("text") != "Dzień dobry" {
			t.Errorf("form = %v", r.PostForm)
		}
		_, _ = w.Write([]byte(`{"translations":[{"detected_source_language":"PL","text":"Good morning"}]}`))
	}))
	defer srv.Close()

	client, err := NewClient("secret", srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := client.Translate(context.Background(), "Dzień dobry", "English")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Good morning" {
		t.Fatalf("Translate = %q, want Good morning", got)
	}
}

func TestTranslateUnsupportedLanguage(t *testing.T) {
	client, _ := NewClient("secret", "http://127.0.0.1:1")
	_, err := client.Translate(context.Background(), "hi", "Croatian")
	if !errors.Is(err, translate.ErrUnsupportedLanguage) {
		t.Fatalf("error = %v, want ErrUnsupportedLanguage", err)
	}
	if got, want := err.Error(), "Target language 'Croatian' not supported by Deepl"; got != want {
		t.Fatalf("error text = %q, want %q", got, want)
	}
}

func TestTranslateAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client, _ := NewClient("bad", srv.URL)
	_, err := client.Translate(context.Background(), "hi", "German")
	var te *translate.Error
	if !errors.As(err, &te) || te.Kind != translate.KindAuth {
		t.Fatalf("error = %v, want auth error", err)
	}
}

func TestNewClientEndpoints(t *testing.T) {
	tests := []struct {
		key, base, want string
	}{
		{"abc:fx", "", freeBaseURL},
		{"abc", "", proBaseURL},
		{"abc", "http://local/", "http://local"},
	}
	for _, tt := range tests {
		c, err := NewClient(tt.key, tt.base)
		if err != nil {
			t.Fatalf("NewClient(%q): %v", tt.key, err)
		}
		if c.baseURL != tt.want {
			t.Fatalf("baseURL = %q, want %q", c.baseURL, tt.want)
		}
	}
	if _, err := NewClient(" ", ""); err == nil {
		t.Fatalf("NewClient with empty key succeeded")
	}
}
