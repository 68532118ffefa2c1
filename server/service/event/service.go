// Package event provides event persistence and editing on top of the store
// layer. Edits to wall-clock fields are re-projected through the timezone
// package so stored instants stay unambiguous UTC.
package event

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/snapcal/snapcal/plugin/ai/eventparse"
	pipeerrors "github.com/snapcal/snapcal/internal/errors"
	"github.com/snapcal/snapcal/server/timezone"
	"github.com/snapcal/snapcal/store"
)

// Store is the slice of the store layer the service needs.
type Store interface {
	CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error)
	ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error)
	GetEvent(ctx context.Context, find *store.FindEvent) (*store.Event, error)
	UpdateEvent(ctx context.Context, update *store.UpdateEvent) (*store.Event, error)
	DeleteEvent(ctx context.Context, delete *store.DeleteEvent) error
}

// Service manages captured events.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates an event service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Provenance records where a captured event came from.
type Provenance struct {
	OriginalInput string
	InputType     store.InputType
	ExtractedText string
	Method        string
	Model         string
}

// CreateFromParsed persists a normalized event with its capture provenance.
func (s *Service) CreateFromParsed(ctx context.Context, parsed *eventparse.ParsedEvent, prov Provenance) (*store.Event, error) {
	start, err := time.Parse(time.RFC3339, parsed.StartISO)
	if err != nil {
		return nil, pipeerrors.ValidationFailed("startISO is not a UTC instant: " + parsed.StartISO)
	}
	end, err := time.Parse(time.RFC3339, parsed.EndISO)
	if err != nil {
		return nil, pipeerrors.ValidationFailed("endISO is not a UTC instant: " + parsed.EndISO)
	}
	if end.Before(start) {
		return nil, pipeerrors.ValidationFailed("end precedes start")
	}
	if parsed.Title == "" {
		return nil, pipeerrors.ValidationFailed("title is required")
	}

	tz := parsed.Timezone
	if tz == "" || !timezone.IsValidTimezone(tz) {
		tz = timezone.TimezoneAmericaNewYork
	}

	inputType := prov.InputType
	if inputType == "" {
		inputType = store.InputTypeText
	}

	return s.store.CreateEvent(ctx, &store.Event{
		UID:           shortuuid.New(),
		Title:         parsed.Title,
		Description:   parsed.Description,
		Location:      parsed.Location,
		StartTs:       start.Unix(),
		EndTs:         end.Unix(),
		AllDay:        parsed.AllDay,
		Timezone:      tz,
		OriginalInput: prov.OriginalInput,
		InputType:     inputType,
		ExtractedText: prov.ExtractedText,
		Method:        prov.Method,
		Model:         prov.Model,
	})
}

// Get fetches one event by UID.
func (s *Service) Get(ctx context.Context, uid string) (*store.Event, error) {
	event, err := s.store.GetEvent(ctx, &store.FindEvent{UID: &uid})
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, pipeerrors.NotFound("event not found: " + uid)
	}
	return event, nil
}

// ListRequest filters the event listing.
type ListRequest struct {
	// From/To bound the window; events overlapping it are returned.
	From *time.Time
	To   *time.Time

	IncludeArchived bool

	Limit  *int
	Offset *int
}

// List returns events ordered by start time.
func (s *Service) List(ctx context.Context, req ListRequest) ([]*store.Event, error) {
	find := &store.FindEvent{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if !req.IncludeArchived {
		normal := store.Normal
		find.RowStatus = &normal
	}
	if req.From != nil {
		from := req.From.Unix()
		find.StartTs = &from
	}
	if req.To != nil {
		to := req.To.Unix()
		find.EndTs = &to
	}
	return s.store.ListEvents(ctx, find)
}

// PatchRequest edits one event. Nil fields are untouched. Wall-clock fields
// (dates, times, timezone, all-day flag) are resolved together against the
// current stored values and re-projected to UTC.
type PatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`

	// Wall-clock edits, interpreted in the event's (possibly updated) zone.
	StartDate *string `json:"startDate"` // "2006-01-02"
	StartTime *string `json:"startTime"` // "15:04"
	EndDate   *string `json:"endDate"`
	EndTime   *string `json:"endTime"`
	Timezone  *string `json:"timezone"`
	AllDay    *bool   `json:"allDay"`
}

func (r *PatchRequest) touchesClock() bool {
	return r.StartDate != nil || r.StartTime != nil || r.EndDate != nil ||
		r.EndTime != nil || r.Timezone != nil || r.AllDay != nil
}

// Patch applies a partial edit. An invalid timezone rejects the whole patch
// and the stored event keeps its previous values. Text-only edits never
// touch the stored instants.
func (s *Service) Patch(ctx context.Context, uid string, req PatchRequest) (*store.Event, error) {
	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	update := &store.UpdateEvent{ID: current.ID}
	if req.Title != nil {
		if *req.Title == "" {
			return nil, pipeerrors.ValidationFailed("title cannot be empty")
		}
		update.Title = req.Title
	}
	if req.Description != nil {
		update.Description = req.Description
	}
	if req.Location != nil {
		update.Location = req.Location
	}

	if req.touchesClock() {
		startTs, endTs, allDay, tz, err := s.resolveClock(current, req)
		if err != nil {
			return nil, err
		}
		update.StartTs = &startTs
		update.EndTs = &endTs
		update.AllDay = &allDay
		update.Timezone = &tz
	}

	updatedTs := s.now().Unix()
	update.UpdatedTs = &updatedTs

	return s.store.UpdateEvent(ctx, update)
}

// resolveClock merges the current wall-clock reading with the requested
// edits, then projects the result back to UTC instants.
func (s *Service) resolveClock(current *store.Event, req PatchRequest) (int64, int64, bool, string, error) {
	tz := current.Timezone
	if req.Timezone != nil {
		if !timezone.IsValidTimezone(*req.Timezone) {
			return 0, 0, false, "", pipeerrors.InvalidTimezone(*req.Timezone, nil)
		}
		tz = *req.Timezone
	}

	// Current wall-clock reading in the original zone; date/time edits
	// replace components, a zone edit reinterprets the reading.
	startLocal, err := timezone.ToLocalComponents(current.StartTime(), current.Timezone)
	if err != nil {
		return 0, 0, false, "", err
	}
	endLocal, err := timezone.ToLocalComponents(current.EndTime(), current.Timezone)
	if err != nil {
		return 0, 0, false, "", err
	}

	startDate := componentsDate(startLocal)
	startTime := componentsTime(startLocal)
	endDate := componentsDate(endLocal)
	endTime := componentsTime(endLocal)

	if req.StartDate != nil {
		startDate = *req.StartDate
	}
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	if req.EndDate != nil {
		endDate = *req.EndDate
	}
	if req.EndTime != nil {
		endTime = *req.EndTime
	}

	start, err := timezone.ToUTC(startDate, startTime, tz)
	if err != nil {
		return 0, 0, false, "", err
	}
	end, err := timezone.ToUTC(endDate, endTime, tz)
	if err != nil {
		return 0, 0, false, "", err
	}

	allDay := current.AllDay
	if req.AllDay != nil {
		allDay = *req.AllDay
	}
	if allDay {
		loc := timezone.MustParseTimezone(tz)
		end = timezone.EndOfDay(end.In(loc), loc)
		start = timezone.StartOfDay(start.In(loc), loc)
	}

	if end.Before(start) {
		return 0, 0, false, "", pipeerrors.ValidationFailed("end precedes start")
	}

	return start.Unix(), end.Unix(), allDay, tz, nil
}

// Archive soft-deletes an event by flipping its row status.
func (s *Service) Archive(ctx context.Context, uid string) (*store.Event, error) {
	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	archived := store.Archived
	updatedTs := s.now().Unix()
	return s.store.UpdateEvent(ctx, &store.UpdateEvent{
		ID:        current.ID,
		RowStatus: &archived,
		UpdatedTs: &updatedTs,
	})
}

// Delete removes an event row permanently.
func (s *Service) Delete(ctx context.Context, uid string) error {
	current, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	return s.store.DeleteEvent(ctx, &store.DeleteEvent{ID: current.ID})
}

func componentsDate(c timezone.LocalComponents) string {
	return time.Date(c.Year, time.Month(c.Month), c.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

func componentsTime(c timezone.LocalComponents) string {
	return time.Date(c.Year, time.Month(c.Month), c.Day, c.Hours, c.Minutes, 0, 0, time.UTC).Format("15:04")
}
