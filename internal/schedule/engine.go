package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/outset-labs/almanac/internal/db"
	"github.com/outset-labs/almanac/internal/model"
	"github.com/outset-labs/almanac/internal/recurrence"
)

// tombstoneNotes is the fixed placeholder written onto suppression rows.
const tombstoneNotes = "deleted occurrence"

// Engine implements the calendar reads and mutations on top of a Store.
// Each mutation is decided as a read phase followed by a single effect
// list, applied transactionally, so a failure never leaves partial state.
type Engine struct {
	store db.Store
}

func NewEngine(store db.Store) *Engine {
	return &Engine{store: store}
}

// CreateInput carries the already-parsed fields of a create request.
type CreateInput struct {
	Title     *string
	Start     time.Time
	Duration  *time.Duration
	Notes     *string
	Link      *string
	Frequency model.Frequency
	Total     *int
}

// EditInput carries the fields of an edit request; nil means "keep the
// current value".
type EditInput struct {
	Title     *string
	Start     *time.Time
	Duration  *time.Duration
	Notes     *string
	Link      *string
	Frequency *model.Frequency
	Total     *int
}

// resolved is the (occurrence, series, effective timestamp) triple every
// mutation starts from. The occurrence may be an unsaved virtual one.
type resolved struct {
	occ    model.Occurrence
	series *model.Series
	at     time.Time
}

func (e *Engine) resolve(ref Ref) (*resolved, error) {
	if ref.Virtual() {
		s, err := e.store.GetSeries(ref.SeriesID)
		if err != nil {
			return nil, mapStoreErr(err, ref)
		}
		occ, err := e.store.OccurrenceAt(ref.SeriesID, ref.At)
		if err != nil {
			return nil, err
		}
		if occ == nil {
			// purely virtual slot: synthesize from the series and
			// its base event, the same template the timeline uses
			base, err := e.store.BaseEvent(s.ID)
			if err != nil {
				return nil, err
			}
			var synth model.Occurrence
			if base != nil {
				synth = synthesize(*s, *base, ref.At)
			} else {
				title := s.Title
				seriesID := s.ID
				synth = model.Occurrence{SeriesID: &seriesID, Title: &title, Start: ref.At, Notes: s.Notes}
			}
			return &resolved{occ: synth, series: s, at: ref.At}, nil
		}
		return &resolved{occ: *occ, series: s, at: ref.At}, nil
	}

	occ, err := e.store.GetOccurrence(ref.ID)
	if err != nil {
		return nil, mapStoreErr(err, ref)
	}
	var s *model.Series
	if occ.SeriesID != nil {
		if s, err = e.store.GetSeries(*occ.SeriesID); err != nil {
			return nil, mapStoreErr(err, ref)
		}
	}
	return &resolved{occ: *occ, series: s, at: occ.Start}, nil
}

func mapStoreErr(err error, ref Ref) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, ref.String())
	}
	return err
}

// Get resolves a reference to its effective occurrence.
func (e *Engine) Get(ref Ref) (*model.Occurrence, error) {
	r, err := e.resolve(ref)
	if err != nil {
		return nil, err
	}
	return &r.occ, nil
}

// Create persists a standalone occurrence, or a series with its base
// event when the frequency recurs. A recurring create without a positive
// total is rejected. Work-day series starting on a weekend are moved to
// the next Monday first.
func (e *Engine) Create(in CreateInput) (*model.Occurrence, error) {
	start := in.Start
	if in.Frequency == model.FrequencyEveryWorkDay {
		start = recurrence.NextWorkDay(start)
	}

	occ := model.Occurrence{
		Title:    in.Title,
		Start:    start,
		Duration: in.Duration,
		Link:     in.Link,
		Notes:    in.Notes,
	}

	if !in.Frequency.Recurring() {
		if err := e.store.Apply(db.InsertOccurrence{Occ: &occ}); err != nil {
			return nil, err
		}
		return &occ, nil
	}

	if in.Total == nil || *in.Total <= 0 {
		return nil, ErrInvalidRecurrence
	}
	series := model.Series{
		ID:        uuid.New(),
		Title:     strOr(in.Title, ""),
		Frequency: in.Frequency,
		Total:     in.Total,
		Notes:     in.Notes,
		Start:     start,
	}
	occ.SeriesID = &series.ID
	if err := e.store.Apply(db.CreateSeries{Series: &series}, db.InsertOccurrence{Occ: &occ}); err != nil {
		return nil, err
	}
	return &occ, nil
}

// Edit applies a mutation at the given scope. The returned occurrence is
// nil for series-wide summaries ("all" and a no-op "future" split).
func (e *Engine) Edit(ref Ref, scope Scope, in EditInput) (*model.Occurrence, error) {
	r, err := e.resolve(ref)
	if err != nil {
		return nil, err
	}
	switch scope {
	case ScopeAll:
		return nil, e.editAll(r, in)
	case ScopeFuture:
		return e.editFuture(r, in)
	case ScopeSingle:
		return e.editSingle(r, in)
	}
	return nil, ErrUnknownScope
}

// editAll rewrites the series descriptor and regenerates every stored row
// from the new pattern, collapsing prior exceptions and tombstones back
// into it. The new time-of-day is read in UTC; for weekly and fortnightly
// series a changed weekday shifts the anchor (and each row) forward by
// the weekday delta mod 7.
func (e *Engine) editAll(r *resolved, in EditInput) error {
	if r.series == nil {
		return ErrInvalidScope
	}
	s := *r.series
	if in.Title != nil {
		s.Title = *in.Title
	}
	if in.Notes != nil {
		s.Notes = in.Notes
	}
	if in.Frequency != nil {
		s.Frequency = *in.Frequency
	}
	if in.Total != nil {
		s.Total = in.Total
	}

	newDT := r.at
	if in.Start != nil {
		newDT = *in.Start
	}
	newDT = newDT.UTC()
	selected := weekdayMon0(newDT)
	weekBased := s.Frequency == model.FrequencyWeekly || s.Frequency == model.FrequencyFortnightly

	s.Start = rebaseDay(s.Start, newDT, selected, weekBased)

	rows, err := e.store.SeriesRows(s.ID)
	if err != nil {
		return err
	}
	effects := []db.Effect{db.UpdateSeries{Series: &s}}
	for i := range rows {
		row := rows[i]
		row.Start = rebaseDay(row.Start, newDT, selected, weekBased)
		if in.Title != nil {
			row.Title = in.Title
		}
		if in.Notes != nil {
			row.Notes = in.Notes
		}
		if in.Duration != nil {
			row.Duration = in.Duration
		}
		if in.Link != nil {
			row.Link = in.Link
		}
		row.IsException = false
		row.Deleted = false
		effects = append(effects, db.UpdateOccurrence{Occ: &row})
	}
	return e.store.Apply(effects...)
}

// rebaseDay keeps t's date (shifted forward to the selected weekday for
// week-based frequencies) and replaces its time-of-day with newDT's.
func rebaseDay(t, newDT time.Time, selected int, weekBased bool) time.Time {
	if weekBased {
		shift := (selected - weekdayMon0(t) + 7) % 7
		t = t.AddDate(0, 0, shift)
	}
	return time.Date(t.Year(), t.Month(), t.Day(),
		newDT.Hour(), newDT.Minute(), newDT.Second(), 0, t.Location())
}

// weekdayMon0 numbers weekdays Monday=0 … Sunday=6.
func weekdayMon0(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// editFuture splits the series at the target occurrence: the original is
// shortened to the occurrences before it, and a new independent series
// anchored at the requested datetime takes over the remainder. Standing
// exceptions past the split point deliberately stay attached to the
// shortened original.
func (e *Engine) editFuture(r *resolved, in EditInput) (*model.Occurrence, error) {
	if r.series == nil {
		return nil, ErrInvalidScope
	}
	s := *r.series
	origTotal := 0
	if s.Total != nil {
		origTotal = *s.Total
	}
	oldCount := recurrence.CountBefore(s, r.at)
	newTotal := origTotal - oldCount
	if newTotal <= 0 {
		// target at or past the series end, nothing to split
		return nil, nil
	}

	newStart := r.at
	if in.Start != nil {
		newStart = *in.Start
	}
	shortened := s
	shortened.Total = &oldCount

	split := model.Series{
		ID:        uuid.New(),
		Title:     strOr(in.Title, s.Title),
		Frequency: s.Frequency,
		Total:     &newTotal,
		Notes:     ptrOr(in.Notes, s.Notes),
		Start:     newStart,
	}
	title := split.Title
	base := model.Occurrence{
		SeriesID: &split.ID,
		Title:    &title,
		Start:    newStart,
		Duration: ptrOr(in.Duration, r.occ.Duration),
		Link:     ptrOr(in.Link, r.occ.Link),
		Notes:    split.Notes,
	}
	err := e.store.Apply(
		db.UpdateSeries{Series: &shortened},
		db.CreateSeries{Series: &split},
		db.InsertOccurrence{Occ: &base},
	)
	if err != nil {
		return nil, err
	}
	return &base, nil
}

// editSingle mutates one occurrence. Moving a series occurrence leaves a
// tombstone at its old slot; moving the base event additionally rebases
// or deletes the series. A standalone occurrence given a recurring
// frequency with a positive total is promoted into a new series.
func (e *Engine) editSingle(r *resolved, in EditInput) (*model.Occurrence, error) {
	occ := r.occ
	s := r.series

	if s == nil && in.Frequency != nil && in.Frequency.Recurring() && in.Total != nil && *in.Total > 0 {
		return e.promote(occ, in)
	}

	// tail effects run after the occurrence write; a series delete must
	// not cascade over a row we are detaching in the same mutation
	var effects, tail []db.Effect
	datetimeChanged := in.Start != nil && !in.Start.Equal(occ.Start)

	if datetimeChanged && s != nil {
		originalStart := occ.Start

		// suppress the vacated slot
		tomb, err := e.store.TombstoneAt(s.ID, originalStart)
		if err != nil {
			return nil, err
		}
		if tomb == nil {
			effects = append(effects, db.InsertOccurrence{Occ: newTombstone(s.ID, originalStart)})
		}

		if s.Start.Equal(originalStart) {
			// the base event is moving; the series needs a new anchor
			cand, persisted, err := e.anchorCandidate(*s, occ, originalStart)
			if err != nil {
				return nil, err
			}
			switch {
			case cand == nil:
				// no remaining anchor candidate: the series goes away
				// and the moved occurrence stands alone
				occ.SeriesID = nil
				occ.IsException = false
				tail = append(tail, db.DeleteSeries{ID: s.ID})
			case in.Start.After(recurrence.End(*s)):
				// moved beyond the series span: detach fully, the
				// candidate's slot becomes the new anchor and the
				// total shrinks by the slots consumed before it
				occ.SeriesID = nil
				occ.IsException = false
				rebased := *s
				rebased.Start = cand.Start
				if s.Total != nil {
					remaining := *s.Total - recurrence.CountBefore(*s, cand.Start)
					rebased.Total = &remaining
				}
				effects = append(effects, db.UpdateSeries{Series: &rebased})
				effects = append(effects, materializeBase(*cand, persisted)...)
			default:
				// still inside the span: anchor follows the new time,
				// the moved row stays attached as an override and the
				// candidate becomes the exception-free base
				rebased := *s
				rebased.Start = *in.Start
				effects = append(effects, db.UpdateSeries{Series: &rebased})
				seriesID := s.ID
				occ.SeriesID = &seriesID
				occ.IsException = true
				effects = append(effects, materializeBase(*cand, persisted)...)
			}
		} else {
			// non-base move: the row becomes an override at its new
			// time; the tombstone above suppresses the old slot
			seriesID := s.ID
			occ.SeriesID = &seriesID
			occ.IsException = true
		}
	} else if !datetimeChanged && s != nil {
		// content-only change of a series occurrence: override in place
		occ.IsException = true
	}

	if in.Title != nil {
		occ.Title = in.Title
	}
	if in.Start != nil {
		occ.Start = *in.Start
	}
	if in.Duration != nil {
		occ.Duration = in.Duration
	}
	if in.Notes != nil {
		occ.Notes = in.Notes
	}
	if in.Link != nil {
		occ.Link = in.Link
	}

	if occ.Virtual() {
		effects = append(effects, db.InsertOccurrence{Occ: &occ})
	} else {
		effects = append(effects, db.UpdateOccurrence{Occ: &occ})
	}
	effects = append(effects, tail...)
	if err := e.store.Apply(effects...); err != nil {
		return nil, err
	}
	return &occ, nil
}

// anchorCandidate finds the next anchor for a series whose base event is
// leaving: the first non-tombstoned persisted row strictly after the old
// anchor, or failing that the first non-tombstoned generated slot still
// inside the series span, synthesized from the departing base's template.
// persisted reports which of the two it found; nil means the series has
// no remaining anchor.
func (e *Engine) anchorCandidate(s model.Series, base model.Occurrence, after time.Time) (cand *model.Occurrence, persisted bool, err error) {
	next, err := e.store.NextLiveRow(s.ID, after)
	if err != nil {
		return nil, false, err
	}
	if next != nil {
		return next, true, nil
	}
	end := recurrence.End(s)
	for slot := recurrence.Advance(s.Frequency, after); !slot.After(end); slot = recurrence.Advance(s.Frequency, slot) {
		tomb, err := e.store.TombstoneAt(s.ID, slot)
		if err != nil {
			return nil, false, err
		}
		if tomb == nil {
			synth := synthesize(s, base, slot)
			return &synth, false, nil
		}
	}
	return nil, false, nil
}

// materializeBase makes the candidate the series' exception-free base:
// a persisted candidate has its exception flag cleared, a virtual one is
// inserted as a fresh row.
func materializeBase(cand model.Occurrence, persisted bool) []db.Effect {
	cand.IsException = false
	if persisted {
		return []db.Effect{db.UpdateOccurrence{Occ: &cand}}
	}
	return []db.Effect{db.InsertOccurrence{Occ: &cand}}
}

// promote turns a standalone occurrence into the base event of a new
// series.
func (e *Engine) promote(occ model.Occurrence, in EditInput) (*model.Occurrence, error) {
	anchor := occ.Start
	if in.Start != nil {
		anchor = *in.Start
	}
	series := model.Series{
		ID:        uuid.New(),
		Title:     strOr(in.Title, strOr(occ.Title, "")),
		Frequency: *in.Frequency,
		Total:     in.Total,
		Notes:     ptrOr(in.Notes, occ.Notes),
		Start:     anchor,
	}
	occ.SeriesID = &series.ID
	occ.IsException = false
	if in.Title != nil {
		occ.Title = in.Title
	}
	if in.Start != nil {
		occ.Start = *in.Start
	}
	if in.Duration != nil {
		occ.Duration = in.Duration
	}
	if in.Notes != nil {
		occ.Notes = in.Notes
	}
	if in.Link != nil {
		occ.Link = in.Link
	}
	err := e.store.Apply(db.CreateSeries{Series: &series}, db.UpdateOccurrence{Occ: &occ})
	if err != nil {
		return nil, err
	}
	return &occ, nil
}

// Delete removes occurrences at the given scope. Single deletes of series
// occurrences never remove rows: they write or convert to a tombstone so
// the slot stays suppressed.
func (e *Engine) Delete(ref Ref, scope Scope) error {
	r, err := e.resolve(ref)
	if err != nil {
		return err
	}
	switch scope {
	case ScopeAll:
		if r.series == nil {
			return ErrInvalidScope
		}
		// generated rows go, the descriptor and standing overrides stay
		return e.store.Apply(db.DeleteGenerated{SeriesID: r.series.ID})

	case ScopeFuture:
		if r.series == nil {
			return ErrInvalidScope
		}
		remaining := recurrence.CountBefore(*r.series, r.at)
		shortened := *r.series
		shortened.Total = &remaining
		from := r.at
		return e.store.Apply(
			db.UpdateSeries{Series: &shortened},
			db.DeleteGenerated{SeriesID: shortened.ID, From: &from},
		)

	case ScopeSingle:
		if r.series == nil {
			return e.store.Apply(db.DeleteOccurrence{ID: r.occ.ID})
		}
		live, err := e.store.LiveOccurrenceAt(r.series.ID, r.at)
		if err != nil {
			return err
		}
		if live == nil {
			tomb, err := e.store.TombstoneAt(r.series.ID, r.at)
			if err != nil {
				return err
			}
			if tomb != nil {
				// slot already suppressed
				return nil
			}
			return e.store.Apply(db.InsertOccurrence{Occ: newTombstone(r.series.ID, r.at)})
		}
		stone := *live
		stone.IsException = true
		stone.Deleted = true
		stone.Title = nil
		zero := time.Duration(0)
		stone.Duration = &zero
		stone.Link = nil
		notes := tombstoneNotes
		stone.Notes = &notes
		return e.store.Apply(db.UpdateOccurrence{Occ: &stone})
	}
	return ErrUnknownScope
}

func newTombstone(seriesID uuid.UUID, at time.Time) *model.Occurrence {
	zero := time.Duration(0)
	notes := tombstoneNotes
	return &model.Occurrence{
		SeriesID:    &seriesID,
		Start:       at,
		Duration:    &zero,
		Notes:       &notes,
		IsException: true,
		Deleted:     true,
	}
}

func strOr(p *string, def string) string {
	if p != nil {
		return *p
	}
	return def
}

func ptrOr[T any](p, def *T) *T {
	if p != nil {
		return p
	}
	return def
}
