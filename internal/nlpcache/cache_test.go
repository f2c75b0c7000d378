package nlpcache

import (
	"path/filepath"
	"testing"

	"github.com/influx-reader/influx-server/internal/models"
)

func TestStoreThenLoadRoundTrips(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_influx_nlp_cache")
	c := New(dir)

	doc := models.NewAnnotatedDoc("the cat sat")
	key := Key(doc.Text)
	c.Store(key, doc)

	got, ok := c.Load(key, doc.Text)
	if !ok {
		t.Fatalf("expected a hit after Store")
	}
	if got.Text != doc.Text {
		t.Fatalf("got text %q, want %q", got.Text, doc.Text)
	}
}

func TestLoadMissingIsMiss(t *testing.T) {
	c := New(t.TempDir())
	_, ok := c.Load(Key("nope"), "nope")
	if ok {
		t.Fatalf("expected a miss for an absent key")
	}
}

func TestLoadRejectsMismatchedText(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	doc := models.NewAnnotatedDoc("original text")
	key := Key(doc.Text)
	c.Store(key, doc)

	_, ok := c.Load(key, "a different text entirely")
	if ok {
		t.Fatalf("expected a miss when expected_text does not match the cached entry")
	}
}

func TestKeyIsDeterministic(t *testing.T) {
	if Key("hello") != Key("hello") {
		t.Fatalf("Key should be deterministic for the same input")
	}
	if Key("hello") == Key("world") {
		t.Fatalf("Key should differ for different input")
	}
}
