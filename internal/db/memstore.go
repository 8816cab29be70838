// in-memory Store implementation mirroring pgStore semantics, used by
// unit tests and as a throwaway backend for local development
package db

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/outset-labs/almanac/internal/model"
)

type memStore struct {
	mu     sync.RWMutex
	series map[uuid.UUID]model.Series
	occs   map[int64]model.Occurrence
	nextID int64
}

var _ Store = (*memStore)(nil)

func NewMemStore() Store {
	return &memStore{
		series: make(map[uuid.UUID]model.Series),
		occs:   make(map[int64]model.Occurrence),
		nextID: 1,
	}
}

func (s *memStore) Ping() error { return nil }

func (s *memStore) GetSeries(id uuid.UUID) (*model.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sr, ok := s.series[id]; ok {
		out := sr
		return &out, nil
	}
	return nil, ErrNotFound
}

func (s *memStore) SeriesStartingBefore(end time.Time) ([]model.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Series
	for _, sr := range s.series {
		if !sr.Start.After(end) {
			out = append(out, sr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *memStore) GetOccurrence(id int64) (*model.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.occs[id]; ok {
		out := o
		return &out, nil
	}
	return nil, ErrNotFound
}

// sortedRows returns every occurrence ordered by start time then id.
func (s *memStore) sortedRows() []model.Occurrence {
	out := make([]model.Occurrence, 0, len(s.occs))
	for _, o := range s.occs {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *memStore) findRow(match func(model.Occurrence) bool) *model.Occurrence {
	for _, o := range s.sortedRows() {
		if match(o) {
			out := o
			return &out
		}
	}
	return nil
}

func sameSeries(o model.Occurrence, seriesID uuid.UUID) bool {
	return o.SeriesID != nil && *o.SeriesID == seriesID
}

func (s *memStore) OccurrenceAt(seriesID uuid.UUID, at time.Time) (*model.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findRow(func(o model.Occurrence) bool {
		return sameSeries(o, seriesID) && o.Start.Equal(at)
	}), nil
}

func (s *memStore) LiveOccurrenceAt(seriesID uuid.UUID, at time.Time) (*model.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findRow(func(o model.Occurrence) bool {
		return sameSeries(o, seriesID) && o.Start.Equal(at) && !o.Deleted
	}), nil
}

func (s *memStore) TombstoneAt(seriesID uuid.UUID, at time.Time) (*model.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findRow(func(o model.Occurrence) bool {
		return sameSeries(o, seriesID) && o.Start.Equal(at) && o.Deleted
	}), nil
}

func (s *memStore) NextLiveRow(seriesID uuid.UUID, after time.Time) (*model.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findRow(func(o model.Occurrence) bool {
		return sameSeries(o, seriesID) && o.Start.After(after) && !o.Deleted
	}), nil
}

func (s *memStore) SeriesRows(seriesID uuid.UUID) ([]model.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Occurrence
	for _, o := range s.sortedRows() {
		if sameSeries(o, seriesID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *memStore) StoredInRange(start, end time.Time) ([]model.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Occurrence
	for _, o := range s.sortedRows() {
		if o.SeriesID != nil && !o.IsException {
			continue
		}
		if o.Start.Before(start) || o.Start.After(end) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *memStore) BaseEvent(seriesID uuid.UUID) (*model.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findRow(func(o model.Occurrence) bool {
		return sameSeries(o, seriesID) && !o.IsException
	}), nil
}

func (s *memStore) BaseEvents() ([]model.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[uuid.UUID]bool)
	var out []model.Occurrence
	for _, o := range s.sortedRows() {
		if o.SeriesID == nil || o.IsException || seen[*o.SeriesID] {
			continue
		}
		seen[*o.SeriesID] = true
		out = append(out, o)
	}
	return out, nil
}

func (s *memStore) Apply(effects ...Effect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, effect := range effects {
		switch e := effect.(type) {
		case CreateSeries, UpdateSeries:
			var sr *model.Series
			if c, ok := e.(CreateSeries); ok {
				sr = c.Series
			} else {
				sr = e.(UpdateSeries).Series
			}
			s.series[sr.ID] = *sr

		case DeleteSeries:
			delete(s.series, e.ID)
			// cascade, matching the FK in the Postgres schema
			for id, o := range s.occs {
				if sameSeries(o, e.ID) {
					delete(s.occs, id)
				}
			}

		case InsertOccurrence:
			e.Occ.ID = s.nextID
			s.nextID++
			s.occs[e.Occ.ID] = *e.Occ

		case UpdateOccurrence:
			s.occs[e.Occ.ID] = *e.Occ

		case DeleteOccurrence:
			delete(s.occs, e.ID)

		case DeleteGenerated:
			for id, o := range s.occs {
				if !sameSeries(o, e.SeriesID) || o.IsException {
					continue
				}
				if e.From != nil && o.Start.Before(*e.From) {
					continue
				}
				delete(s.occs, id)
			}
		}
	}
	return nil
}
