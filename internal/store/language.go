package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/models"
)

// LanguageStore backs the §6 `/lang` routes. Split from TermStore since it
// has no token/phrase concerns, but shares the same connection and the same
// error-mapping conventions.
type LanguageStore struct {
	conn *sql.DB
}

func NewLanguageStore(conn *sql.DB) *LanguageStore {
	return &LanguageStore{conn: conn}
}

// ListLanguages returns every configured language.
func (s *LanguageStore) ListLanguages(ctx context.Context) ([]models.Language, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, code, dicts, tts_voice, tts_rate, deepl_source, deepl_target, parser_config FROM languages`)
	if err != nil {
		return nil, apperr.Storage(err, "list_languages")
	}
	defer rows.Close()

	var out []models.Language
	for rows.Next() {
		lang, err := scanLanguageRow(rows)
		if err != nil {
			return nil, apperr.Storage(err, "list_languages: scan")
		}
		out = append(out, lang)
	}
	return out, rows.Err()
}

// GetLanguage returns the language for id, if any.
func (s *LanguageStore) GetLanguage(ctx context.Context, id int64) (models.Language, bool, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, name, code, dicts, tts_voice, tts_rate, deepl_source, deepl_target, parser_config
		 FROM languages WHERE id = ?`, id)

	var lang models.Language
	var dictsJSON, parserJSON string
	err := row.Scan(&lang.ID, &lang.Name, &lang.Code, &dictsJSON, &lang.TTSVoice, &lang.TTSRate, &lang.DeeplSource, &lang.DeeplTarget, &parserJSON)
	switch {
	case err == sql.ErrNoRows:
		return models.Language{}, false, nil
	case err != nil:
		return models.Language{}, false, apperr.Storage(err, "get_language(%d)", id)
	}
	if err := json.Unmarshal([]byte(dictsJSON), &lang.Dicts); err != nil {
		return models.Language{}, false, apperr.Storage(err, "decode dicts")
	}
	lang.ParserConfig = json.RawMessage(parserJSON)
	return lang, true, nil
}

// GetLanguageByCode resolves the `lang_identifier` path segment used by the
// content-tree routes (spec.md §6), which addresses a language by its code
// rather than its numeric id.
func (s *LanguageStore) GetLanguageByCode(ctx context.Context, code string) (models.Language, bool, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, name, code, dicts, tts_voice, tts_rate, deepl_source, deepl_target, parser_config
		 FROM languages WHERE code = ?`, code)

	var lang models.Language
	var dictsJSON, parserJSON string
	err := row.Scan(&lang.ID, &lang.Name, &lang.Code, &dictsJSON, &lang.TTSVoice, &lang.TTSRate, &lang.DeeplSource, &lang.DeeplTarget, &parserJSON)
	switch {
	case err == sql.ErrNoRows:
		return models.Language{}, false, nil
	case err != nil:
		return models.Language{}, false, apperr.Storage(err, "get_language_by_code(%q)", code)
	}
	if err := json.Unmarshal([]byte(dictsJSON), &lang.Dicts); err != nil {
		return models.Language{}, false, apperr.Storage(err, "decode dicts")
	}
	lang.ParserConfig = json.RawMessage(parserJSON)
	return lang, true, nil
}

// CreateLanguage inserts lang and returns it with its assigned id.
func (s *LanguageStore) CreateLanguage(ctx context.Context, lang models.Language) (models.Language, error) {
	dictsJSON, err := json.Marshal(lang.Dicts)
	if err != nil {
		return models.Language{}, apperr.Internal("create_language: encode dicts: %v", err)
	}
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO languages (name, code, dicts, tts_voice, tts_rate, deepl_source, deepl_target, parser_config)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		lang.Name, lang.Code, string(dictsJSON), lang.TTSVoice, lang.TTSRate, lang.DeeplSource, lang.DeeplTarget, marshalJSONOrEmpty(lang.ParserConfig),
	)
	if err != nil {
		return models.Language{}, apperr.Storage(err, "create_language(%q)", lang.Code)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Language{}, apperr.Storage(err, "create_language: last insert id")
	}
	lang.ID = id
	return lang, nil
}

// UpdateLanguage updates an existing language row in place.
func (s *LanguageStore) UpdateLanguage(ctx context.Context, lang models.Language) (models.Language, error) {
	dictsJSON, err := json.Marshal(lang.Dicts)
	if err != nil {
		return models.Language{}, apperr.Internal("update_language: encode dicts: %v", err)
	}
	res, err := s.conn.ExecContext(ctx,
		`UPDATE languages SET name = ?, code = ?, dicts = ?, tts_voice = ?, tts_rate = ?, deepl_source = ?, deepl_target = ?, parser_config = ?
		 WHERE id = ?`,
		lang.Name, lang.Code, string(dictsJSON), lang.TTSVoice, lang.TTSRate, lang.DeeplSource, lang.DeeplTarget, marshalJSONOrEmpty(lang.ParserConfig), lang.ID,
	)
	if err != nil {
		return models.Language{}, apperr.Storage(err, "update_language(%d)", lang.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Language{}, apperr.NotFound("language %d not found", lang.ID)
	}
	return lang, nil
}

// DeleteLanguage removes the language row. Cascades to tokens/phrases/cards
// via the foreign key ON DELETE CASCADE clauses in schema.sql.
func (s *LanguageStore) DeleteLanguage(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM languages WHERE id = ?`, id)
	if err != nil {
		return apperr.Storage(err, "delete_language(%d)", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("language %d not found", id)
	}
	return nil
}

func scanLanguageRow(rows rowScanner) (models.Language, error) {
	var lang models.Language
	var dictsJSON, parserJSON string
	if err := rows.Scan(&lang.ID, &lang.Name, &lang.Code, &dictsJSON, &lang.TTSVoice, &lang.TTSRate, &lang.DeeplSource, &lang.DeeplTarget, &parserJSON); err != nil {
		return models.Language{}, err
	}
	if err := json.Unmarshal([]byte(dictsJSON), &lang.Dicts); err != nil {
		return models.Language{}, err
	}
	lang.ParserConfig = json.RawMessage(parserJSON)
	return lang, nil
}
