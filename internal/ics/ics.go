// Package ics renders merged timelines as iCalendar feeds.
package ics

import (
	"io"
	"strconv"
	"time"

	"github.com/emersion/go-ical"

	"github.com/outset-labs/almanac/internal/model"
	"github.com/outset-labs/almanac/internal/schedule"
)

const productID = "-//Almanac//Calendar//EN"

// Calendar builds a VCALENDAR with one VEVENT per occurrence. Virtual
// occurrences use their composite reference as UID so a re-export keeps
// UIDs stable.
func Calendar(occs []model.Occurrence) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	now := time.Now().UTC()
	for _, occ := range occs {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, uidFor(occ))
		if occ.Title != nil {
			event.Props.SetText(ical.PropSummary, *occ.Title)
		}
		if occ.Notes != nil {
			event.Props.SetText(ical.PropDescription, *occ.Notes)
		}
		if occ.Link != nil {
			event.Props.SetText(ical.PropURL, *occ.Link)
		}
		event.Props.SetDateTime(ical.PropDateTimeStart, occ.Start.UTC())
		if occ.Duration != nil && *occ.Duration > 0 {
			event.Props.SetDateTime(ical.PropDateTimeEnd, occ.Start.Add(*occ.Duration).UTC())
		}
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// Encode writes the occurrences to w as an iCalendar stream. The encoder
// refuses a calendar with no components, so an empty timeline is written
// as a bare scaffold instead.
func Encode(w io.Writer, occs []model.Occurrence) error {
	if len(occs) == 0 {
		_, err := io.WriteString(w,
			"BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:"+productID+"\r\nEND:VCALENDAR\r\n")
		return err
	}
	return ical.NewEncoder(w).Encode(Calendar(occs))
}

func uidFor(occ model.Occurrence) string {
	if occ.Virtual() {
		return schedule.EncodeRef(*occ.SeriesID, occ.Start)
	}
	return strconv.FormatInt(occ.ID, 10)
}
