package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outset-labs/almanac/internal/model"
	"github.com/outset-labs/almanac/internal/schedule"
)

func TestEncode(t *testing.T) {
	seriesID := uuid.MustParse("7c9f3c1a-23f7-4f2a-9a5c-0d9a8b1c2d3e")
	title := "standup"
	notes := "daily sync"
	link := "https://meet.example.com/standup"
	dur := 30 * time.Minute
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

	occs := []model.Occurrence{
		{
			ID:       42,
			Title:    &title,
			Notes:    &notes,
			Link:     &link,
			Start:    start,
			Duration: &dur,
		},
		{
			SeriesID: &seriesID,
			Title:    &title,
			Start:    start.AddDate(0, 0, 7),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, occs))
	out := buf.String()

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "PRODID:"+productID)
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))

	// persisted rows use the numeric id, virtual slots the composite ref
	assert.Contains(t, out, "UID:42")
	assert.Contains(t, out, "UID:"+schedule.EncodeRef(seriesID, start.AddDate(0, 0, 7)))

	assert.Contains(t, out, "SUMMARY:standup")
	assert.Contains(t, out, "DESCRIPTION:daily sync")
	assert.Contains(t, out, "DTSTART:20240108T090000Z")
	assert.Contains(t, out, "DTEND:20240108T093000Z")
}

func TestEncodeEmptyTimeline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil))
	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "VERSION:2.0")
	assert.Contains(t, out, "PRODID:"+productID)
	assert.Contains(t, out, "END:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}
