package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/snapcal/snapcal/plugin/ai/eventparse"
	"github.com/snapcal/snapcal/server/service/event"
	"github.com/snapcal/snapcal/store"
)

// eventPayload is the JSON representation of a stored event.
type eventPayload struct {
	UID         string `json:"uid"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartISO    string `json:"startISO"`
	EndISO      string `json:"endISO"`
	Timezone    string `json:"timezone"`
	AllDay      bool   `json:"allDay"`
	RowStatus   string `json:"rowStatus"`
	CreatedTs   int64  `json:"createdTs"`
	UpdatedTs   int64  `json:"updatedTs"`

	Method string `json:"method,omitempty"`
	Model  string `json:"model,omitempty"`
}

func toEventPayload(ev *store.Event) *eventPayload {
	return &eventPayload{
		UID:         ev.UID,
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		StartISO:    eventparse.FormatInstant(ev.StartTime()),
		EndISO:      eventparse.FormatInstant(ev.EndTime()),
		Timezone:    ev.Timezone,
		AllDay:      ev.AllDay,
		RowStatus:   string(ev.RowStatus),
		CreatedTs:   ev.CreatedTs,
		UpdatedTs:   ev.UpdatedTs,
		Method:      ev.Method,
		Model:       ev.Model,
	}
}

// createEventRequest persists one normalized event plus its provenance.
type createEventRequest struct {
	Event         eventparse.ParsedEvent `json:"event"`
	OriginalInput string                 `json:"originalInput"`
	InputType     string                 `json:"inputType"`
	ExtractedText string                 `json:"extractedText"`
	Method        string                 `json:"method"`
	Model         string                 `json:"model"`
}

// CreateEvent persists a normalized event.
func (s *APIV1Service) CreateEvent(c echo.Context) error {
	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "malformed request body"})
	}

	created, err := s.Events.CreateFromParsed(c.Request().Context(), &req.Event, event.Provenance{
		OriginalInput: req.OriginalInput,
		InputType:     store.InputType(req.InputType),
		ExtractedText: req.ExtractedText,
		Method:        req.Method,
		Model:         req.Model,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toEventPayload(created))
}

// ListEvents returns events overlapping the requested window.
func (s *APIV1Service) ListEvents(c echo.Context) error {
	req := event.ListRequest{}

	if v := c.QueryParam("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "from must be RFC3339"})
		}
		req.From = &from
	}
	if v := c.QueryParam("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "to must be RFC3339"})
		}
		req.To = &to
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "limit must be a non-negative integer"})
		}
		req.Limit = &limit
	}
	if v := c.QueryParam("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "offset must be a non-negative integer"})
		}
		req.Offset = &offset
	}
	req.IncludeArchived = c.QueryParam("includeArchived") == "true"

	events, err := s.Events.List(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	payloads := make([]*eventPayload, 0, len(events))
	for _, ev := range events {
		payloads = append(payloads, toEventPayload(ev))
	}
	return c.JSON(http.StatusOK, map[string]any{"events": payloads})
}

// GetEvent fetches one event by UID.
func (s *APIV1Service) GetEvent(c echo.Context) error {
	ev, err := s.Events.Get(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toEventPayload(ev))
}

// PatchEvent applies a partial edit to one event.
func (s *APIV1Service) PatchEvent(c echo.Context) error {
	var req event.PatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "malformed request body"})
	}

	updated, err := s.Events.Patch(c.Request().Context(), c.Param("uid"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toEventPayload(updated))
}

// DeleteEvent archives an event. `?permanent=true` removes the row.
func (s *APIV1Service) DeleteEvent(c echo.Context) error {
	uid := c.Param("uid")
	if c.QueryParam("permanent") == "true" {
		if err := s.Events.Delete(c.Request().Context(), uid); err != nil {
			return respondError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	if _, err := s.Events.Archive(c.Request().Context(), uid); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
