package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/outset-labs/almanac/internal/model"
)

const occurrenceColumns = `id, series_id, title, start_at, duration, link, notes, is_exception, deleted`

func (s *pgStore) GetOccurrence(id int64) (*model.Occurrence, error) {
	var out model.Occurrence
	const q = `SELECT ` + occurrenceColumns + ` FROM occurrences WHERE id = $1;`
	if err := s.db.Get(&out, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("occurrence_id", id).Msg("GetOccurrence failed")
		return nil, err
	}
	return &out, nil
}

// maybeGet runs a single-row query and maps the no-rows case onto nil
// rather than an error; slot lookups treat absence as a normal answer.
func (s *pgStore) maybeGet(q string, args ...any) (*model.Occurrence, error) {
	var out model.Occurrence
	if err := s.db.Get(&out, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error().Err(err).Msg("occurrence lookup failed")
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) OccurrenceAt(seriesID uuid.UUID, at time.Time) (*model.Occurrence, error) {
	const q = `
	SELECT ` + occurrenceColumns + `
	  FROM occurrences
	 WHERE series_id = $1 AND start_at = $2
	 ORDER BY id
	 LIMIT 1;`
	return s.maybeGet(q, seriesID, at)
}

func (s *pgStore) LiveOccurrenceAt(seriesID uuid.UUID, at time.Time) (*model.Occurrence, error) {
	const q = `
	SELECT ` + occurrenceColumns + `
	  FROM occurrences
	 WHERE series_id = $1 AND start_at = $2 AND NOT deleted
	 ORDER BY id
	 LIMIT 1;`
	return s.maybeGet(q, seriesID, at)
}

func (s *pgStore) TombstoneAt(seriesID uuid.UUID, at time.Time) (*model.Occurrence, error) {
	const q = `
	SELECT ` + occurrenceColumns + `
	  FROM occurrences
	 WHERE series_id = $1 AND start_at = $2 AND deleted
	 ORDER BY id
	 LIMIT 1;`
	return s.maybeGet(q, seriesID, at)
}

func (s *pgStore) NextLiveRow(seriesID uuid.UUID, after time.Time) (*model.Occurrence, error) {
	const q = `
	SELECT ` + occurrenceColumns + `
	  FROM occurrences
	 WHERE series_id = $1 AND start_at > $2 AND NOT deleted
	 ORDER BY start_at, id
	 LIMIT 1;`
	return s.maybeGet(q, seriesID, after)
}

func (s *pgStore) SeriesRows(seriesID uuid.UUID) ([]model.Occurrence, error) {
	var out []model.Occurrence
	const q = `
	SELECT ` + occurrenceColumns + `
	  FROM occurrences
	 WHERE series_id = $1
	 ORDER BY start_at, id;`
	if err := s.db.Select(&out, q, seriesID); err != nil {
		log.Error().Err(err).Str("series_id", seriesID.String()).Msg("SeriesRows failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) StoredInRange(start, end time.Time) ([]model.Occurrence, error) {
	var out []model.Occurrence
	const q = `
	SELECT ` + occurrenceColumns + `
	  FROM occurrences
	 WHERE (series_id IS NULL OR is_exception)
	   AND start_at >= $1 AND start_at <= $2
	 ORDER BY start_at, id;`
	if err := s.db.Select(&out, q, start, end); err != nil {
		log.Error().Err(err).Msg("StoredInRange failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) BaseEvent(seriesID uuid.UUID) (*model.Occurrence, error) {
	const q = `
	SELECT ` + occurrenceColumns + `
	  FROM occurrences
	 WHERE series_id = $1 AND NOT is_exception
	 ORDER BY start_at, id
	 LIMIT 1;`
	return s.maybeGet(q, seriesID)
}

func (s *pgStore) BaseEvents() ([]model.Occurrence, error) {
	var out []model.Occurrence
	const q = `
	SELECT DISTINCT ON (series_id) ` + occurrenceColumns + `
	  FROM occurrences
	 WHERE series_id IS NOT NULL AND NOT is_exception
	 ORDER BY series_id, start_at, id;`
	if err := s.db.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("BaseEvents failed")
		return nil, err
	}
	return out, nil
}
