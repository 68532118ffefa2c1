package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/snapcal/snapcal/internal/profile"
	"github.com/snapcal/snapcal/plugin/ai/eventparse"
	"github.com/snapcal/snapcal/server/ai"
	"github.com/snapcal/snapcal/server/service/event"
	"github.com/snapcal/snapcal/store"
)

type stubBackend struct {
	response string
	err      error
}

func (b *stubBackend) Chat(context.Context, []ai.Message) (string, error) {
	return b.response, b.err
}

func (b *stubBackend) ChatVision(context.Context, string, []byte, string) (string, error) {
	return b.response, b.err
}

func (b *stubBackend) ChatModel() string   { return "stub-chat" }
func (b *stubBackend) VisionModel() string { return "stub-vision" }

type memStore struct {
	nextID int32
	events map[int32]*store.Event
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, events: map[int32]*store.Event{}}
}

func (m *memStore) CreateEvent(_ context.Context, create *store.Event) (*store.Event, error) {
	create.ID = m.nextID
	m.nextID++
	create.RowStatus = store.Normal
	create.CreatedTs = 1756728000
	create.UpdatedTs = create.CreatedTs
	stored := *create
	m.events[create.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *memStore) ListEvents(_ context.Context, find *store.FindEvent) ([]*store.Event, error) {
	var list []*store.Event
	for _, ev := range m.events {
		if find.ID != nil && ev.ID != *find.ID {
			continue
		}
		if find.UID != nil && ev.UID != *find.UID {
			continue
		}
		if find.RowStatus != nil && ev.RowStatus != *find.RowStatus {
			continue
		}
		if find.EndTs != nil && ev.StartTs > *find.EndTs {
			continue
		}
		if find.StartTs != nil && ev.EndTs < *find.StartTs {
			continue
		}
		copied := *ev
		list = append(list, &copied)
	}
	return list, nil
}

func (m *memStore) GetEvent(ctx context.Context, find *store.FindEvent) (*store.Event, error) {
	list, err := m.ListEvents(ctx, find)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (m *memStore) UpdateEvent(_ context.Context, update *store.UpdateEvent) (*store.Event, error) {
	ev, ok := m.events[update.ID]
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
	if update.AllDay != nil {
		ev.AllDay = *update.AllDay
	}
	if update.Timezone != nil {
		ev.Timezone = *update.Timezone
	}
	if update.RowStatus != nil {
		ev.RowStatus = *update.RowStatus
	}
	copied := *ev
	return &copied, nil
}

func (m *memStore) DeleteEvent(_ context.Context, del *store.DeleteEvent) error {
	delete(m.events, del.ID)
	return nil
}

func newTestAPI(t *testing.T, backend *stubBackend) (*echo.Echo, *APIV1Service) {
	t.Helper()
	p := &profile.Profile{
		Mode:            "dev",
		Driver:          "sqlite",
		DisplayTimezone: "America/New_York",
		CurrentYear:     2025,
		AITimeout:       30 * time.Second,
	}
	normalizer := eventparse.NewNormalizer(eventparse.Config{
		DisplayTimezone: p.DisplayTimezone,
		CurrentYear:     p.CurrentYear,
	}, nil)
	extractor := eventparse.NewExtractor(backend, normalizer, nil)
	svc := NewAPIV1Service(p, extractor, event.NewService(newMemStore()), nil, nil)

	e := echo.New()
	svc.RegisterRoutes(e)
	return e, svc
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestParseText(t *testing.T) {
	backend := &stubBackend{response: `{"rawText": "Trivia Sept 17 2025 6pm-9pm", "events": [
		{"title": "Trivia", "startISO": "2025-09-17T18:00:00"}
	]}`}
	e, _ := newTestAPI(t, backend)

	rec := doJSON(e, http.MethodPost, "/api/v1/parse", `{"text": "Trivia Sept 17 2025 6pm-9pm"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp parseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	require.Equal(t, eventparse.MethodAI, resp.Results[0].Method)
	require.Len(t, resp.Results[0].Events, 1)
	require.Equal(t, "2025-09-17T22:00:00Z", resp.Results[0].Events[0].StartISO)
}

func TestParseImageBatchIsolatesFailures(t *testing.T) {
	backend := &stubBackend{response: `{"rawText": "SPRING CONCERT May 2 2025 7:30 PM - 9:30 PM", "events": [
		{"title": "Spring Concert", "startISO": "2025-05-02T19:30:00"}
	]}`}
	e, _ := newTestAPI(t, backend)

	poster := new(bytes.Buffer)
	require.NoError(t, png.Encode(poster, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	body := new(bytes.Buffer)
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("images", "poster.png")
	require.NoError(t, err)
	_, err = part.Write(poster.Bytes())
	require.NoError(t, err)
	part, err = form.CreateFormFile("images", "corrupt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image at all"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse", body)
	req.Header.Set(echo.HeaderContentType, form.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp parseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)

	// Results keep positional correspondence with the upload order. The good
	// poster extracts normally even though its sibling could not be decoded.
	require.Equal(t, eventparse.MethodAI, resp.Results[0].Method)
	require.Len(t, resp.Results[0].Events, 1)
	require.Equal(t, "Spring Concert", resp.Results[0].Events[0].Title)
	require.Equal(t, "2025-05-02T23:30:00Z", resp.Results[0].Events[0].StartISO)

	require.Equal(t, eventparse.MethodFallback, resp.Results[1].Method)
	require.Contains(t, resp.Results[1].Reason, "image preparation failed")
}

func TestParseRequiresText(t *testing.T) {
	e, _ := newTestAPI(t, &stubBackend{})
	rec := doJSON(e, http.MethodPost, "/api/v1/parse", `{"text": "  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func createEventViaAPI(t *testing.T, e *echo.Echo) *eventPayload {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/v1/events", `{
		"event": {
			"title": "Trivia Night",
			"startISO": "2025-09-17T22:00:00Z",
			"endISO": "2025-09-18T01:00:00Z",
			"timezone": "America/New_York"
		},
		"originalInput": "September 17th CC 6pm - 9pm",
		"inputType": "text",
		"method": "ai",
		"model": "stub-chat"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var payload eventPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.UID)
	return &payload
}

func TestEventLifecycle(t *testing.T) {
	e, _ := newTestAPI(t, &stubBackend{})
	created := createEventViaAPI(t, e)

	rec := doJSON(e, http.MethodGet, "/api/v1/events/"+created.UID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Title-only edit leaves the instants byte-identical.
	rec = doJSON(e, http.MethodPatch, "/api/v1/events/"+created.UID, `{"title": "Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var patched eventPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patched))
	require.Equal(t, "Renamed", patched.Title)
	require.Equal(t, created.StartISO, patched.StartISO)
	require.Equal(t, created.EndISO, patched.EndISO)

	// Invalid timezone rejects the patch outright.
	rec = doJSON(e, http.MethodPatch, "/api/v1/events/"+created.UID, `{"timezone": "Not/AZone"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, "INVALID_TIMEZONE", errResp.Code)

	// Archive hides the event from the default listing.
	rec = doJSON(e, http.MethodDelete, "/api/v1/events/"+created.UID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Events []*eventPayload `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Empty(t, listResp.Events)
}

func TestCalendarExport(t *testing.T) {
	e, _ := newTestAPI(t, &stubBackend{})
	created := createEventViaAPI(t, e)

	rec := doJSON(e, http.MethodGet, "/api/v1/events/"+created.UID+"/ics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
	require.Contains(t, rec.Body.String(), "DTSTART:20250917T220000Z")

	rec = doJSON(e, http.MethodGet, "/api/v1/calendar.ics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "UID:"+created.UID)
}

func TestFeed(t *testing.T) {
	e, svc := newTestAPI(t, &stubBackend{})

	// Feed only lists upcoming events; park one far in the future.
	_, err := svc.Events.CreateFromParsed(context.Background(), &eventparse.ParsedEvent{
		Title:    "Far Future",
		StartISO: "2099-01-01T00:00:00Z",
		EndISO:   "2099-01-01T01:00:00Z",
	}, event.Provenance{})
	require.NoError(t, err)

	rec := doJSON(e, http.MethodGet, "/api/v1/feed.rss", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<rss")
	require.Contains(t, rec.Body.String(), "Far Future")
}
