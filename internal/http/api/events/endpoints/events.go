package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/outset-labs/almanac/internal/http/api"
	"github.com/outset-labs/almanac/internal/http/api/events/packets"
	"github.com/outset-labs/almanac/internal/ics"
	"github.com/outset-labs/almanac/internal/model"
	"github.com/outset-labs/almanac/internal/schedule"
)

type EventController struct {
	engine *schedule.Engine
}

func NewEventController(engine *schedule.Engine) *EventController {
	return &EventController{engine: engine}
}

func EventModule(engine *schedule.Engine) api.Module {
	ctl := NewEventController(engine)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/events", ctl.listEvents)
		c.POST("/events", ctl.createEvent)

		// iCalendar feed; registered raw because it writes text/calendar
		c.Group.GET("/events/export", ctl.exportEvents)

		c.GET("/events/:ref", ctl.getEvent)
		c.PATCH("/events/:ref", ctl.editEvent)
		c.DELETE("/events/:ref", ctl.deleteEvent)
	})
}

// apiError maps domain errors onto HTTP statuses.
func apiError(err error) *api.Error {
	switch {
	case errors.Is(err, schedule.ErrNotFound):
		return &api.Error{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, schedule.ErrMissingRange),
		errors.Is(err, schedule.ErrInvalidDate),
		errors.Is(err, schedule.ErrInvalidScope),
		errors.Is(err, schedule.ErrInvalidRecurrence),
		errors.Is(err, schedule.ErrUnknownScope):
		return &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	log.Error().Err(err).Msg("event request failed")
	return &api.Error{Code: http.StatusInternalServerError, Message: "internal error"}
}

func parseRange(ctx *gin.Context) (time.Time, time.Time, error) {
	fromStr := ctx.Query("from")
	toStr := ctx.Query("to")
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, schedule.ErrMissingRange
	}
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, schedule.ErrInvalidDate
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		return time.Time{}, time.Time{}, schedule.ErrInvalidDate
	}
	return from, to, nil
}

func parseDuration(s *string) (*time.Duration, error) {
	if s == nil {
		return nil, nil
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return nil, schedule.ErrInvalidDate
	}
	return &d, nil
}

func (e *EventController) listEvents(ctx *gin.Context) (any, *api.Error) {
	from, to, err := parseRange(ctx)
	if err != nil {
		return nil, apiError(err)
	}
	occs, err := e.engine.List(from, to)
	if err != nil {
		return nil, apiError(err)
	}
	return packets.NewEventListResponse(occs), nil
}

func (e *EventController) createEvent(ctx *gin.Context) (any, *api.Error) {
	var request packets.CreateEventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	start, err := time.Parse(time.RFC3339, request.Datetime)
	if err != nil {
		return nil, apiError(schedule.ErrInvalidDate)
	}
	duration, err := parseDuration(request.Duration)
	if err != nil {
		return nil, apiError(err)
	}
	frequency, err := model.ParseFrequency(request.Frequency)
	if err != nil {
		return nil, apiError(schedule.ErrInvalidRecurrence)
	}

	occ, err := e.engine.Create(schedule.CreateInput{
		Title:     request.Title,
		Start:     start,
		Duration:  duration,
		Notes:     request.Notes,
		Link:      request.Link,
		Frequency: frequency,
		Total:     request.TotalOccurrences,
	})
	if err != nil {
		return nil, apiError(err)
	}
	return packets.NewEventResponse(*occ), nil
}

func (e *EventController) getEvent(ctx *gin.Context) (any, *api.Error) {
	ref, err := schedule.ParseRef(ctx.Param("ref"))
	if err != nil {
		return nil, apiError(err)
	}
	occ, err := e.engine.Get(ref)
	if err != nil {
		return nil, apiError(err)
	}
	return packets.NewEventResponse(*occ), nil
}

func (e *EventController) editEvent(ctx *gin.Context) (any, *api.Error) {
	ref, err := schedule.ParseRef(ctx.Param("ref"))
	if err != nil {
		return nil, apiError(err)
	}
	var request packets.EditEventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	scope, err := schedule.ParseScope(request.Scope)
	if err != nil {
		return nil, apiError(err)
	}

	in := schedule.EditInput{
		Title: request.Title,
		Notes: request.Notes,
		Link:  request.Link,
		Total: request.TotalOccurrences,
	}
	if request.Datetime != nil {
		start, err := time.Parse(time.RFC3339, *request.Datetime)
		if err != nil {
			return nil, apiError(schedule.ErrInvalidDate)
		}
		in.Start = &start
	}
	if in.Duration, err = parseDuration(request.Duration); err != nil {
		return nil, apiError(err)
	}
	if request.Frequency != nil {
		frequency, err := model.ParseFrequency(*request.Frequency)
		if err != nil {
			return nil, apiError(schedule.ErrInvalidRecurrence)
		}
		in.Frequency = &frequency
	}

	occ, err := e.engine.Edit(ref, scope, in)
	if err != nil {
		return nil, apiError(err)
	}
	if occ == nil {
		return gin.H{"status": "series updated"}, nil
	}
	return packets.NewEventResponse(*occ), nil
}

func (e *EventController) deleteEvent(ctx *gin.Context) (any, *api.Error) {
	ref, err := schedule.ParseRef(ctx.Param("ref"))
	if err != nil {
		return nil, apiError(err)
	}
	scope, err := schedule.ParseScope(ctx.Query("scope"))
	if err != nil {
		return nil, apiError(err)
	}
	if err := e.engine.Delete(ref, scope); err != nil {
		return nil, apiError(err)
	}
	return nil, nil
}

func (e *EventController) exportEvents(ctx *gin.Context) {
	from, to, err := parseRange(ctx)
	if err != nil {
		apiErr := apiError(err)
		ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
		return
	}
	occs, err := e.engine.List(from, to)
	if err != nil {
		apiErr := apiError(err)
		ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
		return
	}

	ctx.Header("Content-Type", "text/calendar; charset=utf-8")
	ctx.Header("Content-Disposition", `attachment; filename="events.ics"`)
	if err := ics.Encode(ctx.Writer, occs); err != nil {
		log.Error().Err(err).Msg("ics encode failed")
	}
}
