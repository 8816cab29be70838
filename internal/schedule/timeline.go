package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/outset-labs/almanac/internal/model"
	"github.com/outset-labs/almanac/internal/recurrence"
)

// slotKey identifies one generated slot of one series. Times are compared
// as instants.
type slotKey struct {
	series uuid.UUID
	unix   int64
}

func keyFor(seriesID uuid.UUID, at time.Time) slotKey {
	return slotKey{series: seriesID, unix: at.Unix()}
}

// List returns every effective occurrence inside [start, end], ascending
// by start time: stored standalone rows, stored exception overrides, and
// virtual occurrences generated from each series, minus tombstoned and
// overridden slots. Stable on equal start times, stored rows first.
func (e *Engine) List(start, end time.Time) ([]model.Occurrence, error) {
	stored, err := e.store.StoredInRange(start, end)
	if err != nil {
		return nil, err
	}

	overridden := make(map[slotKey]bool)
	tombstoned := make(map[slotKey]bool)
	for _, row := range stored {
		if row.SeriesID == nil {
			continue
		}
		key := keyFor(*row.SeriesID, row.Start)
		overridden[key] = true
		if row.Tombstone() {
			tombstoned[key] = true
		}
	}

	allSeries, err := e.store.SeriesStartingBefore(end)
	if err != nil {
		return nil, err
	}
	bases, err := e.baseBySeries()
	if err != nil {
		return nil, err
	}

	var virtual []model.Occurrence
	for _, s := range allSeries {
		base, ok := bases[s.ID]
		if !ok {
			// nothing to template from
			continue
		}
		for _, at := range recurrence.Expand(s, start, end) {
			key := keyFor(s.ID, at)
			if tombstoned[key] || overridden[key] {
				continue
			}
			virtual = append(virtual, synthesize(s, base, at))
		}
	}

	out := make([]model.Occurrence, 0, len(stored)+len(virtual))
	for _, row := range stored {
		if row.Tombstone() {
			continue
		}
		out = append(out, row)
	}
	out = append(out, virtual...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (e *Engine) baseBySeries() (map[uuid.UUID]model.Occurrence, error) {
	rows, err := e.store.BaseEvents()
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]model.Occurrence, len(rows))
	for _, row := range rows {
		out[*row.SeriesID] = row
	}
	return out, nil
}

// synthesize builds the virtual occurrence for one generated slot: title
// and notes come from the series, duration and link from the base event.
func synthesize(s model.Series, base model.Occurrence, at time.Time) model.Occurrence {
	title := s.Title
	seriesID := s.ID
	return model.Occurrence{
		SeriesID: &seriesID,
		Title:    &title,
		Start:    at,
		Duration: base.Duration,
		Link:     base.Link,
		Notes:    s.Notes,
	}
}
