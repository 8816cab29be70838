package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Frequency enumerates the supported recurrence frequencies.
type Frequency string

const (
	FrequencyNever        Frequency = "never"
	FrequencyDaily        Frequency = "daily"
	FrequencyEveryWorkDay Frequency = "every_work_day"
	FrequencyWeekly       Frequency = "weekly"
	FrequencyFortnightly  Frequency = "fortnightly"
)

// ParseFrequency maps a wire value to a Frequency. Empty means never.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case "":
		return FrequencyNever, nil
	case FrequencyNever, FrequencyDaily, FrequencyEveryWorkDay, FrequencyWeekly, FrequencyFortnightly:
		return Frequency(s), nil
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

// Recurring reports whether the frequency generates more than one occurrence.
func (f Frequency) Recurring() bool {
	return f != FrequencyNever && f != ""
}

// Series is a recurrence descriptor. Occurrences after the anchor are
// derived from it on demand and never stored.
type Series struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Frequency Frequency `db:"frequency" json:"frequency"`
	Total     *int      `db:"total_occurrences" json:"total_occurrences"`
	Notes     *string   `db:"notes" json:"notes"`
	Start     time.Time `db:"start_at" json:"start"`
}

// Occurrence is a single calendar entry. A row with no series is a
// standalone event. A row with a series and IsException set overrides the
// generated slot at its start time; if Deleted is also set it is a
// tombstone that suppresses the slot instead. Virtual occurrences carry a
// zero ID and are never persisted.
type Occurrence struct {
	ID          int64          `db:"id" json:"id"`
	SeriesID    *uuid.UUID     `db:"series_id" json:"series_id"`
	Title       *string        `db:"title" json:"title"`
	Start       time.Time      `db:"start_at" json:"start"`
	Duration    *time.Duration `db:"duration" json:"duration"`
	Link        *string        `db:"link" json:"link"`
	Notes       *string        `db:"notes" json:"notes"`
	IsException bool           `db:"is_exception" json:"is_exception"`
	Deleted     bool           `db:"deleted" json:"deleted"`
}

// Virtual reports whether the occurrence was synthesized from a series
// rather than loaded from the store.
func (o Occurrence) Virtual() bool { return o.ID == 0 }

// Tombstone reports whether the occurrence suppresses a generated slot.
func (o Occurrence) Tombstone() bool { return o.IsException && o.Deleted }
