package tokeniser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/influx-reader/influx-server/internal/apperr"
)

func TestTokeniseDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokeniser/en" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["text"] != "hello" {
			t.Errorf("unexpected body %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hello","segments":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	doc, err := c.Tokenise(context.Background(), "en", "hello")
	if err != nil {
		t.Fatalf("Tokenise: %v", err)
	}
	if doc.Text != "hello" {
		t.Fatalf("got text %q, want %q", doc.Text, "hello")
	}
}

func TestTokeniseNon2xxIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Tokenise(context.Background(), "en", "hello")
	if apperr.KindOf(err) != apperr.KindUpstream {
		t.Fatalf("expected Upstream, got %v", err)
	}
}

func TestTokeniseTimeoutIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte(`{"text":"x","segments":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Millisecond)
	_, err := c.Tokenise(context.Background(), "en", "hello")
	if apperr.KindOf(err) != apperr.KindUpstream {
		t.Fatalf("expected Upstream on timeout, got %v", err)
	}
}
