// exposes the Store interface the scheduling core reads from and writes
// through; writes are expressed as effect lists applied in one transaction
package db

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/outset-labs/almanac/internal/model"
)

// ErrNotFound is returned by the Get* lookups when no row matches.
var ErrNotFound = errors.New("not found")

type Store interface {
	// series lookups
	GetSeries(id uuid.UUID) (*model.Series, error)
	SeriesStartingBefore(end time.Time) ([]model.Series, error)

	// occurrence lookups
	GetOccurrence(id int64) (*model.Occurrence, error)
	// OccurrenceAt returns any row at the slot, tombstones included,
	// or nil when the slot is purely virtual.
	OccurrenceAt(seriesID uuid.UUID, at time.Time) (*model.Occurrence, error)
	// LiveOccurrenceAt is OccurrenceAt restricted to non-tombstone rows.
	LiveOccurrenceAt(seriesID uuid.UUID, at time.Time) (*model.Occurrence, error)
	TombstoneAt(seriesID uuid.UUID, at time.Time) (*model.Occurrence, error)
	// NextLiveRow returns the first non-tombstone row of the series
	// strictly after the given time, or nil.
	NextLiveRow(seriesID uuid.UUID, after time.Time) (*model.Occurrence, error)
	SeriesRows(seriesID uuid.UUID) ([]model.Occurrence, error)

	// timeline reads
	// StoredInRange returns standalone rows and series exception rows
	// whose start falls inside [start, end], ordered by start time.
	StoredInRange(start, end time.Time) ([]model.Occurrence, error)
	// BaseEvents returns the first non-exception row of every series.
	BaseEvents() ([]model.Occurrence, error)
	// BaseEvent returns the series' first non-exception row, or nil.
	BaseEvent(seriesID uuid.UUID) (*model.Occurrence, error)

	// Apply runs the effects in order inside a single transaction.
	Apply(effects ...Effect) error

	Ping() error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Ping() error {
	return s.db.Ping()
}
