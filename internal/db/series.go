package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/outset-labs/almanac/internal/model"
)

func (s *pgStore) GetSeries(id uuid.UUID) (*model.Series, error) {
	var out model.Series
	const q = `
	SELECT id, title, frequency, total_occurrences, notes, start_at
	  FROM series
	 WHERE id = $1;`
	if err := s.db.Get(&out, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("series_id", id.String()).Msg("GetSeries failed")
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) SeriesStartingBefore(end time.Time) ([]model.Series, error) {
	var out []model.Series
	const q = `
	SELECT id, title, frequency, total_occurrences, notes, start_at
	  FROM series
	 WHERE start_at <= $1
	 ORDER BY start_at, id;`
	if err := s.db.Select(&out, q, end); err != nil {
		log.Error().Err(err).Msg("SeriesStartingBefore failed")
		return nil, err
	}
	return out, nil
}
