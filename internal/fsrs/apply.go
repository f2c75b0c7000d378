package fsrs

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/db"
	"github.com/influx-reader/influx-server/internal/models"
	"github.com/influx-reader/influx-server/internal/store"
)

// Applier applies a single review to a card, the transactional operation of
// spec.md §4.G: compute the next states, log the review, and advance the
// card's memory/due date, all inside one transaction.
type Applier struct {
	conn  *sql.DB
	cards *store.CardStore
}

func NewApplier(conn *sql.DB, cards *store.CardStore) *Applier {
	return &Applier{conn: conn, cards: cards}
}

// ApplyReview rates cardID with rating at reviewTS (reviewTimeMs is the
// optional time-to-answer in milliseconds shown on the review log) using
// sched, and returns the updated card.
//
// Steps (spec.md §4.G):
//  1. daysElapsed = floor((reviewTS - (card.LastReview ?? reviewTS)).days)
//  2. states = sched.NextStates(card.Memory, daysElapsed)
//  3. chosen = states[rating]
//  4. append a ReviewLog{memory_before, memory_after}
//  5. update the card's memory/due_date/last_review
//
// Steps 4 and 5 run in one transaction.
func (a *Applier) ApplyReview(ctx context.Context, sched *Scheduler, cardID int64, rating models.Rating, reviewTS time.Time, reviewTimeMs *int64) (models.Card, error) {
	card, ok, err := a.cards.GetCard(ctx, nil, cardID)
	if err != nil {
		return models.Card{}, err
	}
	if !ok {
		return models.Card{}, apperr.NotFound("card %d not found", cardID)
	}

	anchor := reviewTS
	if card.LastReview != nil {
		anchor = *card.LastReview
	}
	daysElapsed := math.Floor(reviewTS.Sub(anchor).Hours() / 24)
	if daysElapsed < 0 {
		daysElapsed = 0
	}

	states := sched.NextStates(card.Memory, daysElapsed)
	chosen := states.forRating(rating)

	memBefore := card.Memory
	memAfter := chosen.Memory

	var updated models.Card
	err = db.WithTx(ctx, a.conn, func(tx *sql.Tx) error {
		if _, err := a.cards.CreateReviewLog(ctx, tx, models.ReviewLog{
			CardID:       cardID,
			Rating:       rating,
			ReviewTimeMs: reviewTimeMs,
			MemoryBefore: memBefore,
			MemoryAfter:  &memAfter,
			ReviewDate:   reviewTS,
		}); err != nil {
			return err
		}

		dueDate := reviewTS.Add(time.Duration(math.Round(chosen.IntervalDays)) * 24 * time.Hour)
		updated = card
		updated.Memory = &memAfter
		updated.DueDate = &dueDate
		updated.LastReview = &reviewTS

		return a.cards.UpdateCard(ctx, tx, updated)
	})
	if err != nil {
		return models.Card{}, err
	}
	return updated, nil
}
