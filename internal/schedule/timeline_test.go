package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outset-labs/almanac/internal/model"
)

func TestListExpandsWeeklySeries(t *testing.T) {
	e, _ := newTestEngine(t)
	base := mustCreate(t, e, CreateInput{
		Title:     strp("standup"),
		Start:     at(2024, time.January, 1, 9),
		Frequency: model.FrequencyWeekly,
		Total:     intp(4),
	})

	occs, err := e.List(at(2024, time.January, 1, 0), at(2024, time.January, 31, 23))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		at(2024, time.January, 1, 9),
		at(2024, time.January, 8, 9),
		at(2024, time.January, 15, 9),
		at(2024, time.January, 22, 9),
	}, starts(occs))
	for _, o := range occs {
		require.NotNil(t, o.SeriesID)
		assert.Equal(t, *base.SeriesID, *o.SeriesID)
		assert.Equal(t, "standup", *o.Title)
	}

	// suppressing one slot removes exactly that occurrence
	require.NoError(t, e.Delete(Ref{SeriesID: *base.SeriesID, At: at(2024, time.January, 15, 9)}, ScopeSingle))
	occs, err = e.List(at(2024, time.January, 1, 0), at(2024, time.January, 31, 23))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		at(2024, time.January, 1, 9),
		at(2024, time.January, 8, 9),
		at(2024, time.January, 22, 9),
	}, starts(occs))
}

func TestListClipsToWindow(t *testing.T) {
	e, _ := newTestEngine(t)
	mustCreate(t, e, CreateInput{
		Title:     strp("standup"),
		Start:     at(2024, time.January, 1, 9),
		Frequency: model.FrequencyWeekly,
		Total:     intp(4),
	})
	mustCreate(t, e, CreateInput{
		Title: strp("dentist"),
		Start: at(2024, time.February, 2, 15),
	})

	occs, err := e.List(at(2024, time.January, 2, 0), at(2024, time.January, 20, 0))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		at(2024, time.January, 8, 9),
		at(2024, time.January, 15, 9),
	}, starts(occs))
}

func TestListOrdersStoredBeforeVirtualAtSameInstant(t *testing.T) {
	e, _ := newTestEngine(t)
	mustCreate(t, e, CreateInput{
		Title:     strp("standup"),
		Start:     at(2024, time.January, 1, 9),
		Frequency: model.FrequencyWeekly,
		Total:     intp(3),
	})
	mustCreate(t, e, CreateInput{
		Title: strp("dentist"),
		Start: at(2024, time.January, 8, 9),
	})

	occs, err := e.List(at(2024, time.January, 8, 0), at(2024, time.January, 8, 23))
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, "dentist", *occs[0].Title)
	assert.False(t, occs[0].Virtual())
	assert.Equal(t, "standup", *occs[1].Title)
	assert.True(t, occs[1].Virtual())
}

func TestListVirtualRowsCarryTemplateFields(t *testing.T) {
	e, _ := newTestEngine(t)
	mustCreate(t, e, CreateInput{
		Title:     strp("standup"),
		Notes:     strp("daily sync"),
		Duration:  durp(15 * time.Minute),
		Link:      strp("https://meet.example.com/standup"),
		Start:     at(2024, time.January, 1, 9),
		Frequency: model.FrequencyDaily,
		Total:     intp(3),
	})

	occs, err := e.List(windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, occs, 3)
	for _, o := range occs {
		assert.True(t, o.Virtual())
		assert.Equal(t, "standup", *o.Title)
		assert.Equal(t, "daily sync", *o.Notes)
		assert.Equal(t, 15*time.Minute, *o.Duration)
		assert.Equal(t, "https://meet.example.com/standup", *o.Link)
	}
}

func TestListOverrideReplacesGeneratedSlot(t *testing.T) {
	e, _ := newTestEngine(t)
	base := dailySeries(t, e, at(2024, time.January, 1, 9), 3)

	_, err := e.Edit(Ref{SeriesID: *base.SeriesID, At: at(2024, time.January, 2, 9)}, ScopeSingle,
		EditInput{Title: strp("standup (long)"), Duration: durp(time.Hour)})
	require.NoError(t, err)

	occs, err := e.List(windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, occs, 3, "the override replaces the slot, never duplicates it")
	assert.Equal(t, "standup (long)", *occs[1].Title)
	assert.Equal(t, time.Hour, *occs[1].Duration)
	assert.False(t, occs[1].Virtual())
	assert.True(t, occs[1].IsException)
}

func TestListSeriesWithoutBaseContributesNothing(t *testing.T) {
	e, _ := newTestEngine(t)
	base := dailySeries(t, e, at(2024, time.January, 1, 9), 3)

	require.NoError(t, e.Delete(Ref{ID: base.ID}, ScopeAll))

	occs, err := e.List(windowStart, windowEnd)
	require.NoError(t, err)
	assert.Empty(t, occs)
}
