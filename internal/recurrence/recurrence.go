package recurrence

import (
	"time"

	"github.com/outset-labs/almanac/internal/model"
)

// Advance returns the next occurrence time after t for the given
// frequency. Work-day series never land on a Saturday or Sunday.
func Advance(freq model.Frequency, t time.Time) time.Time {
	switch freq {
	case model.FrequencyDaily, model.FrequencyEveryWorkDay:
		t = t.AddDate(0, 0, 1)
	case model.FrequencyWeekly:
		t = t.AddDate(0, 0, 7)
	case model.FrequencyFortnightly:
		t = t.AddDate(0, 0, 14)
	}
	if freq == model.FrequencyEveryWorkDay {
		for isWeekend(t) {
			t = t.AddDate(0, 0, 1)
		}
	}
	return t
}

// NextWorkDay returns t unchanged unless it falls on a weekend, in which
// case it moves forward to the following Monday.
func NextWorkDay(t time.Time) time.Time {
	for isWeekend(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Expand generates the series' occurrence times inside [windowStart,
// windowEnd], ascending. The walk always starts at the anchor so that the
// total-occurrence budget is consumed by slots before the window too. A
// series without a positive total yields nothing.
func Expand(s model.Series, windowStart, windowEnd time.Time) []time.Time {
	if s.Total == nil || *s.Total <= 0 {
		return nil
	}
	if !s.Frequency.Recurring() {
		// a non-recurring descriptor has exactly one slot, whatever its
		// total says; Advance would repeat the anchor otherwise
		if !s.Start.Before(windowStart) && !s.Start.After(windowEnd) {
			return []time.Time{s.Start}
		}
		return nil
	}
	var out []time.Time
	current := s.Start
	for count := 0; count < *s.Total && !current.After(windowEnd); count++ {
		if !current.Before(windowStart) {
			out = append(out, current)
		}
		current = Advance(s.Frequency, current)
	}
	return out
}

// CountBefore returns how many of the series' occurrences fall strictly
// before target, capped at the series total.
func CountBefore(s model.Series, target time.Time) int {
	if s.Total == nil || *s.Total <= 0 {
		return 0
	}
	count := 0
	current := s.Start
	for current.Before(target) && count < *s.Total {
		count++
		current = Advance(s.Frequency, current)
	}
	return count
}

// End returns the time of the last scheduled occurrence.
func End(s model.Series) time.Time {
	t := s.Start
	if s.Total == nil {
		return t
	}
	for i := 1; i < *s.Total; i++ {
		t = Advance(s.Frequency, t)
	}
	return t
}
