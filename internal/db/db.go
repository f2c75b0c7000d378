// Package db wraps the SQLite-backed relational storage used by the term
// store (D), FSRS scheduler (G) and language registry (H). It adapts the
// teacher's internal/db package: same open/migrate/Conn shape, swapped onto
// the pure-Go modernc.org/sqlite driver and an embedded schema instead of a
// hand-maintained migration file, plus a WithTx helper that review apply
// (internal/fsrs) uses to run its writes in a single transaction. The term
// store's writes do not use it.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/influx-reader/influx-server/internal/apperr"
)

//go:embed schema.sql
var schemaSQL string

// Choice is one of the five CLI-spec'd --db-choice values (SPEC_FULL.md
// §4.K). The three SQLite-backed choices (surreal-memory, postgres-embedded,
// surreal-disk) are implemented here; the two server choices fail fast at
// Open with a clear Internal error.
type Choice string

const (
	ChoiceSurrealMemory Choice = "surreal-memory"
	ChoiceSurrealDisk    Choice = "surreal-disk"
	ChoiceSurrealServer  Choice = "surreal-server"
	ChoicePostgresServer Choice = "postgres-server"
	ChoicePostgresEmbed  Choice = "postgres-embedded"
)

// DB wraps the database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens a connection for the given --db-choice and (for disk-backed
// choices) path, runs the embedded schema, and returns the wrapper.
func Open(choice Choice, path string) (*DB, error) {
	switch choice {
	case ChoiceSurrealMemory, ChoicePostgresEmbed:
		return newConn("file::memory:?cache=shared", ":memory:")
	case ChoiceSurrealDisk:
		return New(path)
	case ChoiceSurrealServer, ChoicePostgresServer:
		return nil, apperr.Internal("db backend %q has no driver in this build; use surreal-memory or surreal-disk", choice)
	default:
		return nil, apperr.Internal("unknown --db-choice %q", choice)
	}
}

// New opens a file-backed SQLite database at dbPath, creating its parent
// directory if necessary, and runs the schema.
func New(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperr.IO(err, "create db directory %s", dir)
	}
	return newConn(dbPath, dbPath)
}

func newConn(dsn, displayPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperr.IO(err, "open database %s", displayPath)
	}
	// SQLite (in particular the modernc.org driver, which serializes writes
	// internally) is happiest with a single connection; concurrent request
	// handlers queue for it, and review apply holds it for exactly one
	// transaction.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, apperr.Storage(err, "enable foreign keys")
	}

	d := &DB{conn: conn, path: displayPath}
	if err := d.Migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

// Migrate applies the embedded schema. It is idempotent (every statement is
// CREATE TABLE/INDEX IF NOT EXISTS).
func (d *DB) Migrate() error {
	if _, err := d.conn.Exec(schemaSQL); err != nil {
		return apperr.Storage(err, "apply schema")
	}
	return nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

// Conn returns the underlying *sql.DB for callers that need raw access
// (store constructors).
func (d *DB) Conn() *sql.DB { return d.conn }

// Path reports the path or DSN this DB was opened with (for logging).
func (d *DB) Path() string { return d.path }

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic. Review apply in internal/fsrs goes through this so
// its storage errors roll back before surfacing; the term create/update/delete
// methods in internal/store do not.
func WithTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage(err, "begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Storage(err, "commit transaction")
	}
	return nil
}
