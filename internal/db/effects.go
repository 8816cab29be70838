package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/outset-labs/almanac/internal/model"
)

// Effect is one persistence step of a mutation. The scheduling engine
// decides a mutation as a list of effects and hands the whole list to
// Store.Apply so partial application can never be observed.
type Effect interface {
	isEffect()
}

type CreateSeries struct {
	Series *model.Series
}

type UpdateSeries struct {
	Series *model.Series
}

// DeleteSeries removes the descriptor and, by cascade, every occurrence
// row still attached to it.
type DeleteSeries struct {
	ID uuid.UUID
}

// InsertOccurrence persists a new row and writes the assigned id back
// into Occ.
type InsertOccurrence struct {
	Occ *model.Occurrence
}

type UpdateOccurrence struct {
	Occ *model.Occurrence
}

type DeleteOccurrence struct {
	ID int64
}

// DeleteGenerated removes the series' non-exception rows, optionally only
// those starting at or after From. Exception rows and tombstones survive.
type DeleteGenerated struct {
	SeriesID uuid.UUID
	From     *time.Time
}

func (CreateSeries) isEffect()     {}
func (UpdateSeries) isEffect()     {}
func (DeleteSeries) isEffect()     {}
func (InsertOccurrence) isEffect() {}
func (UpdateOccurrence) isEffect() {}
func (DeleteOccurrence) isEffect() {}
func (DeleteGenerated) isEffect()  {}
