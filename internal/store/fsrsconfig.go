package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/models"
)

// FSRSConfigStore persists per-language FSRS scheduler parameters.
type FSRSConfigStore struct {
	conn *sql.DB
}

func NewFSRSConfigStore(conn *sql.DB) *FSRSConfigStore {
	return &FSRSConfigStore{conn: conn}
}

// GetByLanguage returns the config for langID, if one has been set.
func (s *FSRSConfigStore) GetByLanguage(ctx context.Context, langID int64) (models.FSRSLanguageConfig, bool, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, lang_id, fsrs_weights, desired_retention, maximum_interval, request_retention, enabled_card_types
		 FROM fsrs_language_configs WHERE lang_id = ?`, langID)

	var cfg models.FSRSLanguageConfig
	var weightsJSON, typesJSON string
	var requestRetention sql.NullFloat64
	err := row.Scan(&cfg.ID, &cfg.LangID, &weightsJSON, &cfg.DesiredRetention, &cfg.MaximumInterval, &requestRetention, &typesJSON)
	switch {
	case err == sql.ErrNoRows:
		return models.FSRSLanguageConfig{}, false, nil
	case err != nil:
		return models.FSRSLanguageConfig{}, false, apperr.Storage(err, "get_fsrs_language_config(%d)", langID)
	}
	if err := json.Unmarshal([]byte(weightsJSON), &cfg.FSRSWeights); err != nil {
		return models.FSRSLanguageConfig{}, false, apperr.Storage(err, "decode fsrs_weights")
	}
	if err := json.Unmarshal([]byte(typesJSON), &cfg.EnabledCardTypes); err != nil {
		return models.FSRSLanguageConfig{}, false, apperr.Storage(err, "decode enabled_card_types")
	}
	if requestRetention.Valid {
		cfg.RequestRetention = &requestRetention.Float64
	}
	return cfg, true, nil
}

// Upsert creates or replaces the config for cfg.LangID.
func (s *FSRSConfigStore) Upsert(ctx context.Context, cfg models.FSRSLanguageConfig) (models.FSRSLanguageConfig, error) {
	weightsJSON, err := json.Marshal(cfg.FSRSWeights)
	if err != nil {
		return models.FSRSLanguageConfig{}, apperr.Internal("upsert_fsrs_language_config: encode weights: %v", err)
	}
	typesJSON, err := json.Marshal(cfg.EnabledCardTypes)
	if err != nil {
		return models.FSRSLanguageConfig{}, apperr.Internal("upsert_fsrs_language_config: encode enabled_card_types: %v", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO fsrs_language_configs (lang_id, fsrs_weights, desired_retention, maximum_interval, request_retention, enabled_card_types)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(lang_id) DO UPDATE SET
		   fsrs_weights = excluded.fsrs_weights,
		   desired_retention = excluded.desired_retention,
		   maximum_interval = excluded.maximum_interval,
		   request_retention = excluded.request_retention,
		   enabled_card_types = excluded.enabled_card_types`,
		cfg.LangID, string(weightsJSON), cfg.DesiredRetention, cfg.MaximumInterval, cfg.RequestRetention, string(typesJSON),
	)
	if err != nil {
		return models.FSRSLanguageConfig{}, apperr.Storage(err, "upsert_fsrs_language_config(%d)", cfg.LangID)
	}
	return cfg, nil
}
