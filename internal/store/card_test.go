package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/db"
	"github.com/influx-reader/influx-server/internal/models"
)

func newTestCardStoreDB(t *testing.T) (*db.DB, *CardStore, int64) {
	t.Helper()
	d, err := db.Open(db.ChoiceSurrealMemory, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ts := New(d.Conn())
	langs := NewLanguageStore(d.Conn())
	lang, err := langs.CreateLanguage(context.Background(), models.Language{Name: "English", Code: "en"})
	if err != nil {
		t.Fatalf("CreateLanguage: %v", err)
	}
	tok, err := ts.CreateToken(context.Background(), models.Token{LangID: lang.ID, Orthography: "cat", Status: models.StatusL1})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	cards := NewCardStore(d.Conn())
	card, err := cards.CreateCard(context.Background(), nil, models.Card{
		TokenID:   tok.ID,
		CardType:  models.CardRecognition,
		CardState: models.CardActive,
	})
	if err != nil {
		t.Fatalf("CreateCard: %v", err)
	}
	return d, cards, card.ID
}

func newTestCardStore(t *testing.T) (*CardStore, int64) {
	t.Helper()
	_, cards, id := newTestCardStoreDB(t)
	return cards, id
}

func TestCreateThenGetCardRoundTrips(t *testing.T) {
	cards, id := newTestCardStore(t)
	got, ok, err := cards.GetCard(context.Background(), nil, id)
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if !ok {
		t.Fatalf("expected a row for id %d", id)
	}
	if got.CardType != models.CardRecognition || got.Memory != nil {
		t.Fatalf("got %+v, want fresh card with no memory yet", got)
	}
}

func TestUpdateCardPersistsMemoryAndDueDate(t *testing.T) {
	cards, id := newTestCardStore(t)
	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)

	card, _, _ := cards.GetCard(context.Background(), nil, id)
	card.Memory = &models.Memory{Stability: 3.5, Difficulty: 4.2}
	card.DueDate = &due
	card.LastReview = &last

	if err := cards.UpdateCard(context.Background(), nil, card); err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}

	got, _, err := cards.GetCard(context.Background(), nil, id)
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if got.Memory == nil || got.Memory.Stability != 3.5 || got.Memory.Difficulty != 4.2 {
		t.Fatalf("got memory %+v, want {3.5 4.2}", got.Memory)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("got due date %v, want %v", got.DueDate, due)
	}
	if got.LastReview == nil || !got.LastReview.Equal(last) {
		t.Fatalf("got last review %v, want %v", got.LastReview, last)
	}
}

func TestUpdateCardMissingIsNotFound(t *testing.T) {
	cards, _ := newTestCardStore(t)
	err := cards.UpdateCard(context.Background(), nil, models.Card{ID: 99999, CardType: models.CardRecognition, CardState: models.CardActive})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCreateReviewLogRoundTrips(t *testing.T) {
	cards, id := newTestCardStore(t)
	ms := int64(1200)
	log, err := cards.CreateReviewLog(context.Background(), nil, models.ReviewLog{
		CardID:       id,
		Rating:       models.RatingGood,
		ReviewTimeMs: &ms,
		MemoryBefore: nil,
		MemoryAfter:  &models.Memory{Stability: 2.3, Difficulty: 5},
		ReviewDate:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateReviewLog: %v", err)
	}
	if log.ID == 0 {
		t.Fatalf("expected an assigned id")
	}
}

// A failure partway through a transaction must leave prior writes in that
// same transaction rolled back (spec.md §5's atomic multi-statement writes).
func TestFailedTransactionLeavesCardUnchanged(t *testing.T) {
	d, cards, id := newTestCardStoreDB(t)
	ctx := context.Background()

	before, _, err := cards.GetCard(ctx, nil, id)
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}

	err = db.WithTx(ctx, d.Conn(), func(tx *sql.Tx) error {
		updated := before
		updated.Memory = &models.Memory{Stability: 9, Difficulty: 9}
		if err := cards.UpdateCard(ctx, tx, updated); err != nil {
			return err
		}
		// force the transaction to fail after a successful write.
		return cards.UpdateCard(ctx, tx, models.Card{ID: 99999, CardType: models.CardRecognition, CardState: models.CardActive})
	})
	if err == nil {
		t.Fatalf("expected the transaction to fail")
	}

	after, _, err := cards.GetCard(ctx, nil, id)
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if after.Memory != nil {
		t.Fatalf("expected rollback to leave memory nil, got %+v", after.Memory)
	}
}
