package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/models"
)

// encodeSeq/decodeSeq round-trip Phrase.OrthographySeq through the phrases table's
// orthography_seq/onset columns.
func encodeSeq(seq []string) (encoded, onset string, err error) {
	raw, err := json.Marshal(seq)
	if err != nil {
		return "", "", err
	}
	if len(seq) > 0 {
		onset = seq[0]
	}
	return string(raw), onset, nil
}

func decodeSeq(raw string) ([]string, error) {
	var seq []string
	if err := json.Unmarshal([]byte(raw), &seq); err != nil {
		return nil, err
	}
	return seq, nil
}

// CreatePhrase mirrors CreateToken for the orthography-seq key.
func (s *TermStore) CreatePhrase(ctx context.Context, ph models.Phrase) (models.Phrase, error) {
	if ph.ID != nil {
		return models.Phrase{}, apperr.Internal("create_phrase: id must be nil, got %d", *ph.ID)
	}
	if len(ph.OrthographySeq) < 2 {
		return models.Phrase{}, apperr.Validation("create_phrase: orthography_seq must have at least 2 elements")
	}
	for _, o := range ph.OrthographySeq {
		if o != strings.ToLower(o) {
			return models.Phrase{}, apperr.Validation("create_phrase: orthography_seq element %q is not lowercase", o)
		}
	}
	if !ph.Status.Valid() || ph.Status == models.StatusUnmarked {
		return models.Phrase{}, apperr.Validation("create_phrase: status %q is not a persistable status", ph.Status)
	}

	seqJSON, onset, err := encodeSeq(ph.OrthographySeq)
	if err != nil {
		return models.Phrase{}, apperr.Internal("create_phrase: encode orthography_seq: %v", err)
	}

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO phrases (lang_id, orthography_seq, onset, definition, notes, original_context, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ph.LangID, seqJSON, onset, ph.Definition, ph.Notes, ph.OriginalContext, ph.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Phrase{}, apperr.Conflict("phrase (%d, %v) already exists", ph.LangID, ph.OrthographySeq)
		}
		return models.Phrase{}, apperr.Storage(err, "create_phrase(%d, %v)", ph.LangID, ph.OrthographySeq)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Phrase{}, apperr.Storage(err, "create_phrase: last insert id")
	}
	ph.ID = &id
	return ph, nil
}

// GetPhraseByID mirrors GetTokenByID.
func (s *TermStore) GetPhraseByID(ctx context.Context, id int64) (models.Phrase, bool, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, lang_id, orthography_seq, definition, notes, original_context, status
		 FROM phrases WHERE id = ?`, id)
	return scanOptionalPhrase(row)
}

// UpdatePhrase mirrors UpdateToken.
func (s *TermStore) UpdatePhrase(ctx context.Context, ph models.Phrase) (models.Phrase, error) {
	if ph.ID == nil {
		return models.Phrase{}, apperr.Internal("update_phrase: id is required")
	}
	existing, ok, err := s.GetPhraseByID(ctx, *ph.ID)
	if err != nil {
		return models.Phrase{}, err
	}
	if !ok {
		return models.Phrase{}, apperr.NotFound("phrase %d not found", *ph.ID)
	}
	if len(ph.OrthographySeq) < 2 {
		return models.Phrase{}, apperr.Validation("update_phrase: orthography_seq must have at least 2 elements")
	}
	for _, o := range ph.OrthographySeq {
		if o != strings.ToLower(o) {
			return models.Phrase{}, apperr.Validation("update_phrase: orthography_seq element %q is not lowercase", o)
		}
	}
	if !ph.Status.Valid() || ph.Status == models.StatusUnmarked {
		return models.Phrase{}, apperr.Validation("update_phrase: status %q is not a persistable status", ph.Status)
	}

	seqJSON, onset, err := encodeSeq(ph.OrthographySeq)
	if err != nil {
		return models.Phrase{}, apperr.Internal("update_phrase: encode orthography_seq: %v", err)
	}

	res, err := s.conn.ExecContext(ctx,
		`UPDATE phrases SET orthography_seq = ?, onset = ?, definition = ?, notes = ?, original_context = ?, status = ?
		 WHERE id = ?`,
		seqJSON, onset, ph.Definition, ph.Notes, ph.OriginalContext, ph.Status, *ph.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Phrase{}, apperr.Conflict("phrase (%d, %v) already exists", existing.LangID, ph.OrthographySeq)
		}
		return models.Phrase{}, apperr.Storage(err, "update_phrase(%d)", *ph.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Phrase{}, apperr.NotFound("phrase %d not found", *ph.ID)
	}
	ph.LangID = existing.LangID
	return ph, nil
}

// DeletePhrase mirrors DeleteToken.
func (s *TermStore) DeletePhrase(ctx context.Context, id int64) (models.Phrase, error) {
	ph, ok, err := s.GetPhraseByID(ctx, id)
	if err != nil {
		return models.Phrase{}, err
	}
	if !ok {
		return models.Phrase{}, apperr.NotFound("phrase %d not found", id)
	}
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM phrases WHERE id = ?`, id); err != nil {
		return models.Phrase{}, apperr.Storage(err, "delete_phrase(%d)", id)
	}
	return ph, nil
}

// QueryPhraseByOnsetOrthographies returns every phrase in langID whose first
// orthography element is in onsets. This bounds the candidate set fed to the
// phrase-fit trie: a phrase can only ever match starting from one of the
// orthographies actually present in the document.
func (s *TermStore) QueryPhraseByOnsetOrthographies(ctx context.Context, langID int64, onsets []string) ([]models.Phrase, error) {
	if len(onsets) == 0 {
		return nil, nil
	}
	query, args := inClauseQuery(
		`SELECT id, lang_id, orthography_seq, definition, notes, original_context, status
		 FROM phrases WHERE lang_id = ? AND onset IN (%s)`,
		langID, onsets,
	)
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(err, "query_phrase_by_onset_orthographies(%d)", langID)
	}
	defer rows.Close()

	var out []models.Phrase
	for rows.Next() {
		ph, err := scanPhraseRow(rows)
		if err != nil {
			return nil, apperr.Storage(err, "query_phrase_by_onset_orthographies: scan")
		}
		out = append(out, ph)
	}
	return out, rows.Err()
}

func scanOptionalPhrase(row *sql.Row) (models.Phrase, bool, error) {
	var ph models.Phrase
	var id int64
	var seqJSON string
	err := row.Scan(&id, &ph.LangID, &seqJSON, &ph.Definition, &ph.Notes, &ph.OriginalContext, &ph.Status)
	switch {
	case err == sql.ErrNoRows:
		return models.Phrase{}, false, nil
	case err != nil:
		return models.Phrase{}, false, apperr.Storage(err, "scan phrase")
	}
	seq, err := decodeSeq(seqJSON)
	if err != nil {
		return models.Phrase{}, false, apperr.Storage(err, "decode orthography_seq")
	}
	ph.ID = &id
	ph.OrthographySeq = seq
	return ph, true, nil
}

func scanPhraseRow(rows rowScanner) (models.Phrase, error) {
	var ph models.Phrase
	var id int64
	var seqJSON string
	if err := rows.Scan(&id, &ph.LangID, &seqJSON, &ph.Definition, &ph.Notes, &ph.OriginalContext, &ph.Status); err != nil {
		return models.Phrase{}, err
	}
	seq, err := decodeSeq(seqJSON)
	if err != nil {
		return models.Phrase{}, err
	}
	ph.ID = &id
	ph.OrthographySeq = seq
	return ph, nil
}
