package packets

import (
	"strconv"
	"time"

	"github.com/outset-labs/almanac/internal/model"
	"github.com/outset-labs/almanac/internal/schedule"
)

type EventResponse struct {
	Ref         string  `json:"ref"`
	SeriesID    *string `json:"series_id,omitempty"`
	Title       *string `json:"title"`
	Start       string  `json:"start"`
	Duration    *string `json:"duration,omitempty"`
	Link        *string `json:"link,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	IsException bool    `json:"is_exception"`
	Virtual     bool    `json:"virtual"`
}

func NewEventResponse(o model.Occurrence) EventResponse {
	out := EventResponse{
		Title:       o.Title,
		Start:       o.Start.Format(time.RFC3339),
		Link:        o.Link,
		Notes:       o.Notes,
		IsException: o.IsException,
		Virtual:     o.Virtual(),
	}
	if o.Virtual() {
		out.Ref = schedule.EncodeRef(*o.SeriesID, o.Start)
	} else {
		out.Ref = strconv.FormatInt(o.ID, 10)
	}
	if o.SeriesID != nil {
		id := o.SeriesID.String()
		out.SeriesID = &id
	}
	if o.Duration != nil {
		d := o.Duration.String()
		out.Duration = &d
	}
	return out
}

func NewEventListResponse(occs []model.Occurrence) []EventResponse {
	out := make([]EventResponse, 0, len(occs))
	for _, o := range occs {
		out = append(out, NewEventResponse(o))
	}
	return out
}
