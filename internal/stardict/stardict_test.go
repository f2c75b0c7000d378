package stardict

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestDict(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "en.dict")
	content := "cat\ta small domesticated carnivorous mammal\ndog\ta domesticated carnivorous mammal\ncat\tinformal: a person\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLookupReturnsAllDefinitions(t *testing.T) {
	m := NewManager()
	path := writeTestDict(t)

	defs, err := m.Lookup(path, "cat")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2: %v", len(defs), defs)
	}
}

func TestLookupMissingWordIsEmpty(t *testing.T) {
	m := NewManager()
	path := writeTestDict(t)

	defs, err := m.Lookup(path, "zzz")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("expected no definitions, got %v", defs)
	}
}

func TestLookupMemoisesDictionary(t *testing.T) {
	m := NewManager()
	path := writeTestDict(t)

	if _, err := m.Lookup(path, "cat"); err != nil {
		t.Fatalf("first Lookup: %v", err)
	}
	// Remove the backing file; a memoised Manager must still serve from cache.
	os.Remove(path)

	defs, err := m.Lookup(path, "dog")
	if err != nil {
		t.Fatalf("second Lookup should use the cached Dictionary: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("got %v, want 1 definition", defs)
	}
}

func TestLookupMissingFileErrors(t *testing.T) {
	m := NewManager()
	if _, err := m.Lookup(filepath.Join(t.TempDir(), "missing.dict"), "cat"); err == nil {
		t.Fatalf("expected an error for a missing dictionary file")
	}
}
