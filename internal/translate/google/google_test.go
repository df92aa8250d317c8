package google

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
		if r.URL.Path != "/translate_a/single" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("client") != "gtx" || q.Get("tl") != "de" || q.Get("q") != "Hello world. Bye" {
			t.Errorf("unexpected query %v", q)
		}
		_, _ = w.Write([]byte(`[[["Hallo Welt. ","Hello world. ",null,null,10],["Tschüss","Bye",null,null,10]],null,"en"]`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := client.Translate(context.Background(), "Hello world. Bye", "German")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Hallo Welt. Tschüss" {
		t.Fatalf("Translate = %q, want %q", got, "Hallo Welt. Tschüss")
	}
}

func TestTranslateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL)
	_, err := client.Translate(context.Background(), "hi", "Polish")
	var te *translate.Error
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *translate.Error", err)
	}
	if te.Backend != translate.Google || te.Kind != translate.KindResponse {
		t.Fatalf("error = %+v", te)
	}
}

func TestParseResponseRejectsGarbage(t *testing.T) {
	for _, body := range []string{`{}`, `[]`, `["x"]`, `[[]]`} {
		if _, err := parseResponse([]byte(body)); err == nil {
			t.Fatalf("parseResponse(%s) succeeded, want error", body)
		}
	}
}

func TestTranslateBlankPassthrough(t *testing.T) {
	client, _ := NewClient("http://127.0.0.1:1")
	got, err := client.Translate(context.Background(), "  ", "German")
	if err != nil || got != "  " {
		t.Fatalf("Translate blank = %q, %v", got, err)
	}
}
