package icalendar

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/require"
)

func newTestExporter() *Exporter {
	x := NewExporter("Test Calendar")
	x.now = func() time.Time {
		return time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	}
	return x
}

func TestExportTimedEvent(t *testing.T) {
	x := newTestExporter()

	out, err := x.Export([]*Event{{
		UID:      "ev-timed",
		Title:    "Trivia Night",
		Location: "Campus Center",
		Start:    time.Date(2025, time.September, 17, 22, 0, 0, 0, time.UTC),
		End:      time.Date(2025, time.September, 18, 1, 0, 0, 0, time.UTC),
		Timezone: "America/New_York",
	}})
	require.NoError(t, err)

	require.Contains(t, out, "BEGIN:VCALENDAR")
	require.Contains(t, out, "UID:ev-timed")
	require.Contains(t, out, "SUMMARY:Trivia Night")
	require.Contains(t, out, "LOCATION:Campus Center")
	require.Contains(t, out, "DTSTART:20250917T220000Z")
	require.Contains(t, out, "DTEND:20250918T010000Z")

	// The output must parse back.
	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)
}

func TestExportAllDayEvent(t *testing.T) {
	x := newTestExporter()

	// Local 00:00-23:59 on Sept 5 in New York, stored as UTC instants.
	out, err := x.Export([]*Event{{
		UID:      "ev-allday",
		Title:    "Club Fair",
		Start:    time.Date(2025, time.September, 5, 4, 0, 0, 0, time.UTC),
		End:      time.Date(2025, time.September, 6, 3, 59, 0, 0, time.UTC),
		Timezone: "America/New_York",
		AllDay:   true,
	}})
	require.NoError(t, err)

	// Date-only values; exclusive end is the following day.
	require.Contains(t, out, "DTSTART;VALUE=DATE:20250905")
	require.Contains(t, out, "DTEND;VALUE=DATE:20250906")
	require.NotContains(t, out, "DTSTART:2025")
}

func TestExportAllDayBadTimezone(t *testing.T) {
	x := newTestExporter()

	_, err := x.Export([]*Event{{
		UID:      "ev-bad",
		Title:    "Broken",
		Start:    time.Now(),
		End:      time.Now(),
		Timezone: "Not/AZone",
		AllDay:   true,
	}})
	require.Error(t, err)
}

func TestExportEmptyCalendar(t *testing.T) {
	x := newTestExporter()

	out, err := x.Export(nil)
	require.NoError(t, err)
	require.Contains(t, out, "BEGIN:VCALENDAR")
	require.Contains(t, out, "END:VCALENDAR")
}
