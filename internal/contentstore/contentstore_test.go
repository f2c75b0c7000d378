package contentstore

import (
	"testing"
	"time"

	"github.com/influx-reader/influx-server/internal/models"
)

func TestWriteThenReadRoundTrips(t *testing.T) {
	s := New(t.TempDir())
	meta := models.DocMetadata{
		Title:      "A Walk",
		DocType:    models.DocText,
		Tags:       []string{"beginner", "fiction"},
		DateCreate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DateModify: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	body := "The cat sat on the mat.\n"

	if err := s.Write("en", "walk.md", meta, body); err != nil {
		t.Fatalf("Write: %v", err)
	}

	gotMeta, gotBody, err := s.Read("en", "walk.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if gotMeta.Title != meta.Title || gotBody != body {
		t.Fatalf("got (%+v, %q), want (%+v, %q)", gotMeta, gotBody, meta, body)
	}
}

func TestListReturnsAllDocsSorted(t *testing.T) {
	s := New(t.TempDir())
	for _, name := range []string{"b.md", "a.md"} {
		if err := s.Write("en", name, models.DocMetadata{Title: name}, "body"); err != nil {
			t.Fatalf("Write %s: %v", name, err)
		}
	}

	entries, err := s.List("en")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].File != "a.md" || entries[1].File != "b.md" {
		t.Fatalf("got %+v, want [a.md b.md] in order", entries)
	}
}

func TestReadMissingDocumentIsNotFound(t *testing.T) {
	s := New(t.TempDir())
	if _, _, err := s.Read("en", "nope.md"); err == nil {
		t.Fatalf("expected an error for a missing document")
	}
}

func TestListMissingLangDirIsNotFound(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.List("xx"); err == nil {
		t.Fatalf("expected an error for a missing language directory")
	}
}
