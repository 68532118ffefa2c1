package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/snapcal/snapcal/plugin/icalendar"
	"github.com/snapcal/snapcal/server/service/event"
	"github.com/snapcal/snapcal/store"
)

const icsContentType = "text/calendar; charset=utf-8"

func toICSEvent(ev *store.Event) *icalendar.Event {
	return &icalendar.Event{
		UID:         ev.UID,
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       ev.StartTime(),
		End:         ev.EndTime(),
		Timezone:    ev.Timezone,
		AllDay:      ev.AllDay,
	}
}

// ExportEventICS serves a single event as an .ics file.
func (s *APIV1Service) ExportEventICS(c echo.Context) error {
	ev, err := s.Events.Get(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}

	out, err := s.Exporter.Export([]*icalendar.Event{toICSEvent(ev)})
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+ev.UID+`.ics"`)
	return c.Blob(http.StatusOK, icsContentType, []byte(out))
}

// ExportCalendarICS serves every active event as a subscribable calendar.
func (s *APIV1Service) ExportCalendarICS(c echo.Context) error {
	events, err := s.Events.List(c.Request().Context(), event.ListRequest{})
	if err != nil {
		return respondError(c, err)
	}

	icsEvents := make([]*icalendar.Event, 0, len(events))
	for _, ev := range events {
		icsEvents = append(icsEvents, toICSEvent(ev))
	}

	out, err := s.Exporter.Export(icsEvents)
	if err != nil {
		return respondError(c, err)
	}
	return c.Blob(http.StatusOK, icsContentType, []byte(out))
}
