package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/models"
)

// CardStore backs the FSRS scheduler's review application (spec.md §4.G):
// card and review_log persistence. Split from TermStore since cards key off
// either a token or a phrase, not one specific domain.
type CardStore struct {
	conn *sql.DB
}

func NewCardStore(conn *sql.DB) *CardStore {
	return &CardStore{conn: conn}
}

// CreateCard inserts card and returns it with its assigned id.
func (s *CardStore) CreateCard(ctx context.Context, tx *sql.Tx, card models.Card) (models.Card, error) {
	exec := s.execer(tx)
	res, err := exec.ExecContext(ctx,
		`INSERT INTO cards (token_id, phrase_id, card_type, card_state, stability, difficulty, due_date, last_review)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		card.TokenID, card.PhraseID, card.CardType, card.CardState,
		memoryStability(card.Memory), memoryDifficulty(card.Memory),
		formatTimePtr(card.DueDate), formatTimePtr(card.LastReview),
	)
	if err != nil {
		return models.Card{}, apperr.Storage(err, "create_card")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Card{}, apperr.Storage(err, "create_card: last insert id")
	}
	card.ID = id
	return card, nil
}

// GetCard returns the card for id, if any.
func (s *CardStore) GetCard(ctx context.Context, tx *sql.Tx, id int64) (models.Card, bool, error) {
	query := s.queryer(tx)
	row := query.QueryRowContext(ctx,
		`SELECT id, token_id, phrase_id, card_type, card_state, stability, difficulty, due_date, last_review
		 FROM cards WHERE id = ?`, id)
	return scanOptionalCard(row)
}

// UpdateCard persists card.Memory/DueDate/LastReview/CardState in place.
func (s *CardStore) UpdateCard(ctx context.Context, tx *sql.Tx, card models.Card) error {
	exec := s.execer(tx)
	res, err := exec.ExecContext(ctx,
		`UPDATE cards SET card_state = ?, stability = ?, difficulty = ?, due_date = ?, last_review = ? WHERE id = ?`,
		card.CardState, memoryStability(card.Memory), memoryDifficulty(card.Memory),
		formatTimePtr(card.DueDate), formatTimePtr(card.LastReview), card.ID,
	)
	if err != nil {
		return apperr.Storage(err, "update_card(%d)", card.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("card %d not found", card.ID)
	}
	return nil
}

// CreateReviewLog inserts a ReviewLog row for audit (spec.md §4.G step 4).
func (s *CardStore) CreateReviewLog(ctx context.Context, tx *sql.Tx, log models.ReviewLog) (models.ReviewLog, error) {
	exec := s.execer(tx)
	res, err := exec.ExecContext(ctx,
		`INSERT INTO review_logs (card_id, rating, review_time_ms, stability_before, difficulty_before, stability_after, difficulty_after, review_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.CardID, log.Rating, log.ReviewTimeMs,
		memoryStability(log.MemoryBefore), memoryDifficulty(log.MemoryBefore),
		memoryStability(log.MemoryAfter), memoryDifficulty(log.MemoryAfter),
		log.ReviewDate.UTC().Format(timeLayout),
	)
	if err != nil {
		return models.ReviewLog{}, apperr.Storage(err, "create_review_log")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.ReviewLog{}, apperr.Storage(err, "create_review_log: last insert id")
	}
	log.ID = id
	return log, nil
}

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

// execer/queryer let CardStore methods run either inside a *sql.Tx (the
// normal case, per §5: "all multi-statement writes ... run in a single
// transaction") or directly against the pool for read-only callers that
// don't need one.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *CardStore) execer(tx *sql.Tx) execer {
	if tx != nil {
		return tx
	}
	return s.conn
}
func (s *CardStore) queryer(tx *sql.Tx) queryer {
	if tx != nil {
		return tx
	}
	return s.conn
}

func scanOptionalCard(row *sql.Row) (models.Card, bool, error) {
	var card models.Card
	var stability, difficulty sql.NullFloat64
	var dueDate, lastReview sql.NullString
	err := row.Scan(&card.ID, &card.TokenID, &card.PhraseID, &card.CardType, &card.CardState, &stability, &difficulty, &dueDate, &lastReview)
	switch {
	case err == sql.ErrNoRows:
		return models.Card{}, false, nil
	case err != nil:
		return models.Card{}, false, apperr.Storage(err, "scan card")
	}
	if stability.Valid && difficulty.Valid {
		card.Memory = &models.Memory{Stability: stability.Float64, Difficulty: difficulty.Float64}
	}
	card.DueDate = parseTimePtr(dueDate)
	card.LastReview = parseTimePtr(lastReview)
	return card, true, nil
}

func memoryStability(m *models.Memory) any {
	if m == nil {
		return nil
	}
	return m.Stability
}

func memoryDifficulty(m *models.Memory) any {
	if m == nil {
		return nil
	}
	return m.Difficulty
}
