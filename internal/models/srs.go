package models

import "time"

// Memory is the FSRS (stability, difficulty) pair.
type Memory struct {
	Stability  float64 `json:"stability"`
	Difficulty float64 `json:"difficulty"`
}

// Card is one spaced-repetition card, keyed by exactly one of TokenID/PhraseID.
type Card struct {
	ID         int64     `json:"id"`
	TokenID    *int64    `json:"token_id,omitempty"`
	PhraseID   *int64    `json:"phrase_id,omitempty"`
	CardType   CardType  `json:"card_type"`
	CardState  CardState `json:"card_state"`
	Memory     *Memory   `json:"memory,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	LastReview *time.Time `json:"last_review,omitempty"`
}

// ReviewLog is an append-only record of one review application.
type ReviewLog struct {
	ID            int64      `json:"id"`
	CardID        int64      `json:"card_id"`
	Rating        Rating     `json:"rating"`
	ReviewTimeMs  *int64     `json:"review_time_ms,omitempty"`
	MemoryBefore  *Memory    `json:"memory_before,omitempty"`
	MemoryAfter   *Memory    `json:"memory_after,omitempty"`
	ReviewDate    time.Time  `json:"review_date"`
}

// FSRSLanguageConfig parameterises the scheduler per language.
type FSRSLanguageConfig struct {
	ID                 int64     `json:"id"`
	LangID             int64     `json:"lang_id"`
	FSRSWeights        [21]float64 `json:"fsrs_weights"`
	DesiredRetention   float64   `json:"desired_retention"`
	MaximumInterval    int       `json:"maximum_interval"`
	RequestRetention   *float64  `json:"request_retention,omitempty"`
	EnabledCardTypes   []CardType `json:"enabled_card_types"`
}
