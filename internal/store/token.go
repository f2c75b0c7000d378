// Package store implements the term store (spec.md §4.D): per-language CRUD
// over tokens and phrases, plus the bulk dictionary lookup the annotation
// assembler and document pipeline depend on. It adapts the teacher's
// internal/commands.Indexer shape (a struct wrapping *sql.DB, one query per
// method, sql.NullString handling for optional columns) to the term domain,
// and maps every failure onto internal/apperr instead of fmt.Errorf so the
// HTTP layer can tell a Conflict from a Storage error without string
// matching.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"strings"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/models"
)

// TermStore exposes the token and phrase operations of spec.md §4.D. It owns
// no hidden state beyond the connection pool. Its methods do not open
// transactions: each statement runs on its own against the pool, and the
// update and delete methods read the existing row in a separate statement
// before writing.
type TermStore struct {
	conn *sql.DB
}

// New wraps conn. conn is normally (*db.DB).Conn().
func New(conn *sql.DB) *TermStore {
	return &TermStore{conn: conn}
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// TokenExists reports whether lang_id/orthography already has a row.
// Precondition: orthography is already lowercase (programmer error otherwise).
func (s *TermStore) TokenExists(ctx context.Context, langID int64, orthography string) (bool, error) {
	if orthography != strings.ToLower(orthography) {
		return false, apperr.Validation("token_exists: orthography %q is not lowercase", orthography)
	}
	var id int64
	err := s.conn.QueryRowContext(ctx,
		`SELECT id FROM tokens WHERE lang_id = ? AND orthography = ?`, langID, orthography,
	).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, apperr.Storage(err, "token_exists(%d, %q)", langID, orthography)
	default:
		return true, nil
	}
}

// CreateToken inserts tok, requiring tok.ID == nil, tok.Orthography already
// lowercase, and no existing row for (lang_id, orthography). Returns the row
// with its assigned id.
func (s *TermStore) CreateToken(ctx context.Context, tok models.Token) (models.Token, error) {
	if tok.ID != nil {
		return models.Token{}, apperr.Internal("create_token: id must be nil, got %d", *tok.ID)
	}
	if tok.Orthography != strings.ToLower(tok.Orthography) {
		return models.Token{}, apperr.Validation("create_token: orthography %q is not lowercase", tok.Orthography)
	}
	if !tok.Status.Valid() || tok.Status == models.StatusUnmarked {
		return models.Token{}, apperr.Validation("create_token: status %q is not a persistable status", tok.Status)
	}

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO tokens (lang_id, orthography, phonetic, definition, notes, original_context, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tok.LangID, tok.Orthography, tok.Phonetic, tok.Definition, tok.Notes, tok.OriginalContext, tok.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Token{}, apperr.Conflict("token (%d, %q) already exists", tok.LangID, tok.Orthography)
		}
		return models.Token{}, apperr.Storage(err, "create_token(%d, %q)", tok.LangID, tok.Orthography)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Token{}, apperr.Storage(err, "create_token: last insert id")
	}
	tok.ID = &id
	return tok, nil
}

// GetTokenByID returns (token, true, nil) if found, (zero, false, nil) if
// absent, and (zero, false, err) on a storage error.
func (s *TermStore) GetTokenByID(ctx context.Context, id int64) (models.Token, bool, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, lang_id, orthography, phonetic, definition, notes, original_context, status
		 FROM tokens WHERE id = ?`, id)
	return scanOptionalToken(row)
}

// GetTokenByOrthography returns the token for (lang_id, orthography), if any.
// Precondition: orthography lowercase.
func (s *TermStore) GetTokenByOrthography(ctx context.Context, langID int64, orthography string) (models.Token, bool, error) {
	if orthography != strings.ToLower(orthography) {
		return models.Token{}, false, apperr.Validation("get_token_by_orthography: orthography %q is not lowercase", orthography)
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, lang_id, orthography, phonetic, definition, notes, original_context, status
		 FROM tokens WHERE lang_id = ? AND orthography = ?`, langID, orthography)
	if err != nil {
		return models.Token{}, false, apperr.Storage(err, "get_token_by_orthography(%d, %q)", langID, orthography)
	}
	defer rows.Close()

	var found []models.Token
	for rows.Next() {
		tok, err := scanTokenRow(rows)
		if err != nil {
			return models.Token{}, false, apperr.Storage(err, "get_token_by_orthography: scan")
		}
		found = append(found, tok)
	}
	if err := rows.Err(); err != nil {
		return models.Token{}, false, apperr.Storage(err, "get_token_by_orthography: iterate")
	}
	if len(found) == 0 {
		return models.Token{}, false, nil
	}
	if len(found) > 1 {
		log.Printf("store: (lang_id=%d, orthography=%q) matched %d token rows, expected at most 1; returning first", langID, orthography, len(found))
	}
	return found[0], true, nil
}

// GetTokensByOrthographies returns every row among orthographies that exists.
// Missing orthographies are simply absent from the result (callers wanting
// synthetic placeholders should use DictFromOrthographySet instead).
func (s *TermStore) GetTokensByOrthographies(ctx context.Context, langID int64, orthographies []string) ([]models.Token, error) {
	if len(orthographies) == 0 {
		return nil, nil
	}
	query, args := inClauseQuery(
		`SELECT id, lang_id, orthography, phonetic, definition, notes, original_context, status
		 FROM tokens WHERE lang_id = ? AND orthography IN (%s)`,
		langID, orthographies,
	)
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(err, "get_tokens_by_orthographies(%d)", langID)
	}
	defer rows.Close()

	var out []models.Token
	for rows.Next() {
		tok, err := scanTokenRow(rows)
		if err != nil {
			return nil, apperr.Storage(err, "get_tokens_by_orthographies: scan")
		}
		out = append(out, tok)
	}
	return out, rows.Err()
}

// UpdateToken requires tok.ID set and the row to exist. If Orthography
// changes, the new value must be free or the call fails Conflict.
func (s *TermStore) UpdateToken(ctx context.Context, tok models.Token) (models.Token, error) {
	if tok.ID == nil {
		return models.Token{}, apperr.Internal("update_token: id is required")
	}
	existing, ok, err := s.GetTokenByID(ctx, *tok.ID)
	if err != nil {
		return models.Token{}, err
	}
	if !ok {
		return models.Token{}, apperr.NotFound("token %d not found", *tok.ID)
	}
	if tok.Orthography != strings.ToLower(tok.Orthography) {
		return models.Token{}, apperr.Validation("update_token: orthography %q is not lowercase", tok.Orthography)
	}
	if !tok.Status.Valid() || tok.Status == models.StatusUnmarked {
		return models.Token{}, apperr.Validation("update_token: status %q is not a persistable status", tok.Status)
	}

	res, err := s.conn.ExecContext(ctx,
		`UPDATE tokens SET orthography = ?, phonetic = ?, definition = ?, notes = ?, original_context = ?, status = ?
		 WHERE id = ?`,
		tok.Orthography, tok.Phonetic, tok.Definition, tok.Notes, tok.OriginalContext, tok.Status, *tok.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Token{}, apperr.Conflict("token (%d, %q) already exists", existing.LangID, tok.Orthography)
		}
		return models.Token{}, apperr.Storage(err, "update_token(%d)", *tok.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Token{}, apperr.NotFound("token %d not found", *tok.ID)
	}
	tok.LangID = existing.LangID
	return tok, nil
}

// DeleteToken removes the row and returns it for audit purposes.
func (s *TermStore) DeleteToken(ctx context.Context, id int64) (models.Token, error) {
	tok, ok, err := s.GetTokenByID(ctx, id)
	if err != nil {
		return models.Token{}, err
	}
	if !ok {
		return models.Token{}, apperr.NotFound("token %d not found", id)
	}
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM tokens WHERE id = ?`, id); err != nil {
		return models.Token{}, apperr.Storage(err, "delete_token(%d)", id)
	}
	return tok, nil
}

func scanOptionalToken(row *sql.Row) (models.Token, bool, error) {
	var tok models.Token
	var id int64
	err := row.Scan(&id, &tok.LangID, &tok.Orthography, &tok.Phonetic, &tok.Definition, &tok.Notes, &tok.OriginalContext, &tok.Status)
	switch {
	case err == sql.ErrNoRows:
		return models.Token{}, false, nil
	case err != nil:
		return models.Token{}, false, apperr.Storage(err, "scan token")
	}
	tok.ID = &id
	return tok, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTokenRow(rows rowScanner) (models.Token, error) {
	var tok models.Token
	var id int64
	if err := rows.Scan(&id, &tok.LangID, &tok.Orthography, &tok.Phonetic, &tok.Definition, &tok.Notes, &tok.OriginalContext, &tok.Status); err != nil {
		return models.Token{}, err
	}
	tok.ID = &id
	return tok, nil
}

// inClauseQuery substitutes a `?, ?, ...` placeholder list of len(values)
// into the single %s verb in template and returns the flattened args
// (leadArgs first, then one per value).
func inClauseQuery(template string, langID int64, values []string) (string, []any) {
	placeholders := strings.Repeat("?,", len(values))
	placeholders = placeholders[:len(placeholders)-1]
	query := sqlSprintf(template, placeholders)

	args := make([]any, 0, len(values)+1)
	args = append(args, langID)
	for _, v := range values {
		args = append(args, v)
	}
	return query, args
}

func sqlSprintf(template, placeholders string) string {
	return strings.Replace(template, "%s", placeholders, 1)
}

// marshalJSONOrEmpty is a small helper reused by the language registry for
// optional JSON columns.
func marshalJSONOrEmpty(v json.RawMessage) string {
	if len(v) == 0 {
		return "{}"
	}
	return string(v)
}
