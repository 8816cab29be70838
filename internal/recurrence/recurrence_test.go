package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outset-labs/almanac/internal/model"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func intp(n int) *int { return &n }

func TestAdvance(t *testing.T) {
	tests := []struct {
		name string
		freq model.Frequency
		from time.Time
		want time.Time
	}{
		{
			name: "daily adds one day",
			freq: model.FrequencyDaily,
			from: at(2024, time.January, 1, 9),
			want: at(2024, time.January, 2, 9),
		},
		{
			name: "weekly adds seven days",
			freq: model.FrequencyWeekly,
			from: at(2024, time.January, 1, 9),
			want: at(2024, time.January, 8, 9),
		},
		{
			name: "fortnightly adds fourteen days",
			freq: model.FrequencyFortnightly,
			from: at(2024, time.January, 1, 9),
			want: at(2024, time.January, 15, 9),
		},
		{
			name: "work day skips saturday and sunday",
			freq: model.FrequencyEveryWorkDay,
			// 2024-01-05 is a Friday
			from: at(2024, time.January, 5, 9),
			want: at(2024, time.January, 8, 9),
		},
		{
			name: "work day within the week adds one day",
			freq: model.FrequencyEveryWorkDay,
			from: at(2024, time.January, 3, 9),
			want: at(2024, time.January, 4, 9),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Advance(tt.freq, tt.from))
		})
	}
}

func TestAdvanceWorkDayNeverLandsOnWeekend(t *testing.T) {
	// iterate from every weekday of a week and check a long run
	for day := 1; day <= 7; day++ {
		current := NextWorkDay(at(2024, time.January, day, 9))
		for i := 0; i < 100; i++ {
			current = Advance(model.FrequencyEveryWorkDay, current)
			wd := current.Weekday()
			require.NotEqual(t, time.Saturday, wd)
			require.NotEqual(t, time.Sunday, wd)
		}
	}
}

func TestNextWorkDay(t *testing.T) {
	// 2024-01-06 is a Saturday
	assert.Equal(t, at(2024, time.January, 8, 9), NextWorkDay(at(2024, time.January, 6, 9)))
	assert.Equal(t, at(2024, time.January, 8, 9), NextWorkDay(at(2024, time.January, 7, 9)))
	assert.Equal(t, at(2024, time.January, 8, 9), NextWorkDay(at(2024, time.January, 8, 9)))
}

func TestExpandBoundedByTotal(t *testing.T) {
	s := model.Series{
		Frequency: model.FrequencyDaily,
		Total:     intp(5),
		Start:     at(2024, time.March, 1, 8),
	}
	got := Expand(s, at(2000, time.January, 1, 0), at(2100, time.January, 1, 0))
	require.Len(t, got, 5)
	current := s.Start
	for i, ts := range got {
		assert.Equal(t, current, ts, "occurrence %d", i)
		if i > 0 {
			assert.True(t, got[i-1].Before(ts))
		}
		current = Advance(s.Frequency, current)
	}
}

func TestExpandWindowAfterAnchorConsumesBudget(t *testing.T) {
	// weekly series of 4 anchored 2024-01-01T09:00
	s := model.Series{
		Frequency: model.FrequencyWeekly,
		Total:     intp(4),
		Start:     at(2024, time.January, 1, 9),
	}

	got := Expand(s, at(2024, time.January, 1, 0), at(2024, time.January, 31, 0))
	want := []time.Time{
		at(2024, time.January, 1, 9),
		at(2024, time.January, 8, 9),
		at(2024, time.January, 15, 9),
		at(2024, time.January, 22, 9),
	}
	assert.Equal(t, want, got, "count exhausts at 01-22, 01-29 never generated")

	// a window starting mid-series still counts the earlier slots
	got = Expand(s, at(2024, time.January, 10, 0), at(2024, time.February, 28, 0))
	want = []time.Time{
		at(2024, time.January, 15, 9),
		at(2024, time.January, 22, 9),
	}
	assert.Equal(t, want, got)
}

func TestExpandNonRecurringEmitsAnchorOnce(t *testing.T) {
	// a descriptor rewritten to "never" by a series edit must not repeat
	// its anchor total times
	s := model.Series{
		Frequency: model.FrequencyNever,
		Total:     intp(5),
		Start:     at(2024, time.January, 1, 9),
	}
	got := Expand(s, at(2024, time.January, 1, 0), at(2024, time.January, 31, 0))
	assert.Equal(t, []time.Time{at(2024, time.January, 1, 9)}, got)

	assert.Empty(t, Expand(s, at(2024, time.February, 1, 0), at(2024, time.February, 28, 0)),
		"anchor outside the window")
}

func TestExpandNoTotalYieldsNothing(t *testing.T) {
	s := model.Series{Frequency: model.FrequencyDaily, Start: at(2024, time.January, 1, 9)}
	assert.Empty(t, Expand(s, at(2023, time.January, 1, 0), at(2025, time.January, 1, 0)))

	s.Total = intp(0)
	assert.Empty(t, Expand(s, at(2023, time.January, 1, 0), at(2025, time.January, 1, 0)))
}

func TestCountBefore(t *testing.T) {
	s := model.Series{
		Frequency: model.FrequencyDaily,
		Total:     intp(10),
		Start:     at(2024, time.January, 1, 9),
	}
	tests := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"before anchor", at(2023, time.December, 31, 0), 0},
		{"at anchor", at(2024, time.January, 1, 9), 0},
		{"mid series", at(2024, time.January, 4, 9), 3},
		{"past the end caps at total", at(2024, time.June, 1, 0), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountBefore(s, tt.target))
		})
	}
}

func TestCountBeforePlusExpandCoversTotal(t *testing.T) {
	s := model.Series{
		Frequency: model.FrequencyWeekly,
		Total:     intp(7),
		Start:     at(2024, time.January, 1, 9),
	}
	farFuture := at(2100, time.January, 1, 0)
	for _, target := range Expand(s, s.Start, farFuture) {
		before := CountBefore(s, target)
		rest := Expand(s, target, farFuture)
		assert.Equal(t, *s.Total, before+len(rest), "split at %s", target)
	}
}

func TestEnd(t *testing.T) {
	s := model.Series{
		Frequency: model.FrequencyDaily,
		Total:     intp(3),
		Start:     at(2024, time.January, 1, 9),
	}
	assert.Equal(t, at(2024, time.January, 3, 9), End(s))

	s.Total = intp(1)
	assert.Equal(t, s.Start, End(s))
}
