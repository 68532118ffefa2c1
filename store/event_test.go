package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snapcal/snapcal/internal/profile"
)

// fakeDriver is an in-memory Driver used to exercise the Store layer without
// a database.
type fakeDriver struct {
	nextID int32
	events map[int32]*Event
	lists  int // number of ListEvents calls, to observe cache hits
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{nextID: 1, events: map[int32]*Event{}}
}

func (f *fakeDriver) GetDB() *sql.DB { return nil }
func (f *fakeDriver) Close() error   { return nil }

func (f *fakeDriver) IsInitialized(context.Context) (bool, error) { return true, nil }

func (f *fakeDriver) CreateEvent(_ context.Context, create *Event) (*Event, error) {
	create.ID = f.nextID
	f.nextID++
	create.RowStatus = Normal
	if create.CreatedTs == 0 {
		create.CreatedTs = 1700000000
	}
	create.UpdatedTs = create.CreatedTs
	stored := *create
	f.events[create.ID] = &stored
	return create, nil
}

func (f *fakeDriver) ListEvents(_ context.Context, find *FindEvent) ([]*Event, error) {
	f.lists++
	var list []*Event
	for _, ev := range f.events {
		if find.ID != nil && ev.ID != *find.ID {
			continue
		}
		if find.UID != nil && ev.UID != *find.UID {
			continue
		}
		if find.RowStatus != nil && ev.RowStatus != *find.RowStatus {
			continue
		}
		copied := *ev
		list = append(list, &copied)
	}
	return list, nil
}

func (f *fakeDriver) UpdateEvent(_ context.Context, update *UpdateEvent) (*Event, error) {
	ev, ok := f.events[update.ID]
	if !ok {
		return nil, fmt.Errorf("event not found")
	}
	if update.Title != nil {
		ev.Title = *update.Title
	}
	if update.StartTs != nil {
		ev.StartTs = *update.StartTs
	}
	if update.EndTs != nil {
		ev.EndTs = *update.EndTs
	}
	if update.RowStatus != nil {
		ev.RowStatus = *update.RowStatus
	}
	copied := *ev
	return &copied, nil
}

func (f *fakeDriver) DeleteEvent(_ context.Context, del *DeleteEvent) error {
	if _, ok := f.events[del.ID]; !ok {
		return fmt.Errorf("event not found")
	}
	delete(f.events, del.ID)
	return nil
}

func newTestStore(driver Driver) *Store {
	return New(driver, &profile.Profile{Mode: "dev", Driver: "sqlite"})
}

func TestGetEventUsesCache(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	s := newTestStore(driver)
	defer s.Close()

	created, err := s.CreateEvent(ctx, &Event{
		UID:     "abc",
		Title:   "Trivia Night",
		StartTs: 1758146400,
		EndTs:   1758157200,
	})
	require.NoError(t, err)

	uid := created.UID
	got, err := s.GetEvent(ctx, &FindEvent{UID: &uid})
	require.NoError(t, err)
	require.Equal(t, "Trivia Night", got.Title)
	require.Zero(t, driver.lists, "create should have primed the cache")
}

func TestUpdateEventRefreshesCache(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	s := newTestStore(driver)
	defer s.Close()

	created, err := s.CreateEvent(ctx, &Event{UID: "abc", Title: "Old", StartTs: 1, EndTs: 2})
	require.NoError(t, err)

	title := "New"
	_, err = s.UpdateEvent(ctx, &UpdateEvent{ID: created.ID, Title: &title})
	require.NoError(t, err)

	uid := created.UID
	got, err := s.GetEvent(ctx, &FindEvent{UID: &uid})
	require.NoError(t, err)
	require.Equal(t, "New", got.Title)
}

func TestGetEventMissReturnsNil(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeDriver())
	defer s.Close()

	uid := "missing"
	got, err := s.GetEvent(ctx, &FindEvent{UID: &uid})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestEventHelpers(t *testing.T) {
	ev := &Event{StartTs: 1758146400, EndTs: 1758157200}
	require.Equal(t, "2025-09-17T22:00:00Z", ev.StartTime().Format("2006-01-02T15:04:05Z"))
	require.Equal(t, float64(3), ev.Duration().Hours())
	require.True(t, ev.IsUpcoming(1758146400))
	require.False(t, ev.IsUpcoming(1758157201))
}
