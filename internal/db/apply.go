package db

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Apply executes the effect list inside one transaction. Either every
// effect lands or none do.
func (s *pgStore) Apply(effects ...Effect) (err error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("rollback failed")
			}
			return
		}
		err = tx.Commit()
	}()

	for _, effect := range effects {
		switch e := effect.(type) {
		case CreateSeries:
			_, err = tx.Exec(`
			INSERT INTO series (id, title, frequency, total_occurrences, notes, start_at)
			VALUES ($1, $2, $3, $4, $5, $6);`,
				e.Series.ID, e.Series.Title, e.Series.Frequency, e.Series.Total, e.Series.Notes, e.Series.Start)

		case UpdateSeries:
			_, err = tx.Exec(`
			UPDATE series
			   SET title = $2, frequency = $3, total_occurrences = $4, notes = $5, start_at = $6
			 WHERE id = $1;`,
				e.Series.ID, e.Series.Title, e.Series.Frequency, e.Series.Total, e.Series.Notes, e.Series.Start)

		case DeleteSeries:
			_, err = tx.Exec(`DELETE FROM series WHERE id = $1;`, e.ID)

		case InsertOccurrence:
			err = tx.Get(&e.Occ.ID, `
			INSERT INTO occurrences (series_id, title, start_at, duration, link, notes, is_exception, deleted)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id;`,
				e.Occ.SeriesID, e.Occ.Title, e.Occ.Start, e.Occ.Duration, e.Occ.Link, e.Occ.Notes, e.Occ.IsException, e.Occ.Deleted)

		case UpdateOccurrence:
			_, err = tx.Exec(`
			UPDATE occurrences
			   SET series_id = $2, title = $3, start_at = $4, duration = $5,
			       link = $6, notes = $7, is_exception = $8, deleted = $9
			 WHERE id = $1;`,
				e.Occ.ID, e.Occ.SeriesID, e.Occ.Title, e.Occ.Start, e.Occ.Duration,
				e.Occ.Link, e.Occ.Notes, e.Occ.IsException, e.Occ.Deleted)

		case DeleteOccurrence:
			_, err = tx.Exec(`DELETE FROM occurrences WHERE id = $1;`, e.ID)

		case DeleteGenerated:
			if e.From != nil {
				_, err = tx.Exec(`
				DELETE FROM occurrences
				 WHERE series_id = $1 AND NOT is_exception AND start_at >= $2;`,
					e.SeriesID, *e.From)
			} else {
				_, err = tx.Exec(`
				DELETE FROM occurrences
				 WHERE series_id = $1 AND NOT is_exception;`,
					e.SeriesID)
			}

		default:
			err = fmt.Errorf("unsupported effect %T", effect)
		}

		if err != nil {
			log.Error().Err(err).Type("effect", effect).Msg("Apply failed")
			return err
		}
	}
	return nil
}
