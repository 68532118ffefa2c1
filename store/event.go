package store

import (
	"context"
	"time"
)

// InputType records what kind of capture produced an event.
type InputType string

const (
	InputTypeText  InputType = "text"
	InputTypeImage InputType = "image"
)

// Event is the persisted form of a captured calendar event. StartTs/EndTs are
// UTC unix seconds; Timezone names the zone the wall-clock reading came from,
// which is what the editing and ICS paths need to reconstruct local time.
type Event struct {
	ID        int32
	UID       string
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	Title       string
	Description string
	Location    string
	StartTs     int64
	EndTs       int64
	AllDay      bool
	Timezone    string

	// Provenance of the capture.
	OriginalInput string
	InputType     InputType
	ExtractedText string
	Method        string
	Model         string
}

// FindEvent is the find condition for events.
type FindEvent struct {
	ID  *int32
	UID *string

	// Overlap window filters: events whose [start, end] intersects
	// [StartTs, EndTs].
	StartTs *int64
	EndTs   *int64

	RowStatus *RowStatus

	Limit  *int
	Offset *int
}

// UpdateEvent is the update request for an event. Nil fields are untouched.
type UpdateEvent struct {
	ID        int32
	UpdatedTs *int64
	RowStatus *RowStatus

	Title       *string
	Description *string
	Location    *string
	StartTs     *int64
	EndTs       *int64
	AllDay      *bool
	Timezone    *string
}

// DeleteEvent is the delete request for an event.
type DeleteEvent struct {
	ID int32
}

// CreateEvent creates a new event.
func (s *Store) CreateEvent(ctx context.Context, create *Event) (*Event, error) {
	event, err := s.driver.CreateEvent(ctx, create)
	if err != nil {
		return nil, err
	}
	s.eventCache.Set(event.UID, event)
	return event, nil
}

// ListEvents lists events with filter, ordered by start time.
func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	return s.driver.ListEvents(ctx, find)
}

// GetEvent gets a single event, checking the UID cache first.
func (s *Store) GetEvent(ctx context.Context, find *FindEvent) (*Event, error) {
	if find.UID != nil && find.ID == nil {
		if cached, ok := s.eventCache.Get(*find.UID); ok {
			if event, ok := cached.(*Event); ok {
				return event, nil
			}
		}
	}

	list, err := s.driver.ListEvents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	event := list[0]
	s.eventCache.Set(event.UID, event)
	return event, nil
}

// UpdateEvent updates an event and invalidates its cache entry.
func (s *Store) UpdateEvent(ctx context.Context, update *UpdateEvent) (*Event, error) {
	event, err := s.driver.UpdateEvent(ctx, update)
	if err != nil {
		return nil, err
	}
	s.eventCache.Set(event.UID, event)
	return event, nil
}

// DeleteEvent deletes an event row outright. Archival is an UpdateEvent with
// RowStatus Archived; this is the hard path.
func (s *Store) DeleteEvent(ctx context.Context, delete *DeleteEvent) error {
	if event, err := s.GetEvent(ctx, &FindEvent{ID: &delete.ID}); err == nil && event != nil {
		s.eventCache.Delete(event.UID)
	}
	return s.driver.DeleteEvent(ctx, delete)
}

// StartTime returns the start instant.
func (e *Event) StartTime() time.Time {
	return time.Unix(e.StartTs, 0).UTC()
}

// EndTime returns the end instant.
func (e *Event) EndTime() time.Time {
	return time.Unix(e.EndTs, 0).UTC()
}

// Duration returns the event length.
func (e *Event) Duration() time.Duration {
	return e.EndTime().Sub(e.StartTime())
}

// IsUpcoming reports whether the event ends at or after the given instant.
func (e *Event) IsUpcoming(ts int64) bool {
	return e.EndTs >= ts
}
