package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMemoryAndMigrate(t *testing.T) {
	d, err := Open(ChoiceSurrealMemory, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	tables := []string{"languages", "tokens", "phrases", "cards", "review_logs", "fsrs_language_configs"}
	for _, table := range tables {
		var name string
		err := d.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing after migrate: %v", table, err)
		}
	}
}

func TestNewCreatesFileAndDirectory(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "nested", "influx.db")

	d, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected db file at %s: %v", dbPath, err)
	}
	if err := d.Conn().Ping(); err != nil {
		t.Errorf("connection not valid: %v", err)
	}
}

func TestUnavailableBackendFailsFast(t *testing.T) {
	if _, err := Open(ChoiceSurrealServer, ""); err == nil {
		t.Fatalf("expected an error for an unavailable backend")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	d, err := Open(ChoiceSurrealMemory, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	if err := d.Migrate(); err != nil {
		t.Fatalf("second Migrate should be a no-op, got: %v", err)
	}
}
