// Package icalendar renders captured events as iCalendar (RFC 5545) files so
// they can be imported into any calendar client or subscribed to as a feed.
package icalendar

import (
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/pkg/errors"
)

// Event is the exportable slice of a captured event.
type Event struct {
	UID         string
	Title       string
	Description string
	Location    string
	Start       time.Time // UTC instant
	End         time.Time // UTC instant
	Timezone    string    // IANA zone the event was captured in
	AllDay      bool
}

// Exporter serializes events to iCalendar text.
type Exporter struct {
	calName string
	now     func() time.Time
}

// NewExporter creates an Exporter. The calendar name shows up as the
// subscription title in most clients.
func NewExporter(calName string) *Exporter {
	if calName == "" {
		calName = "SnapCal"
	}
	return &Exporter{
		calName: calName,
		now:     time.Now,
	}
}

// Export serializes the events into a single VCALENDAR. Timed events are
// written as UTC date-times; all-day events as date-only values with an
// exclusive end one day past the last day, per RFC 5545.
func (x *Exporter) Export(events []*Event) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SnapCal//SnapCal//EN")
	cal.SetXWRCalName(x.calName)

	stamp := x.now().UTC()
	for _, ev := range events {
		vevent := cal.AddEvent(ev.UID)
		vevent.SetDtStampTime(stamp)
		vevent.SetSummary(ev.Title)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			vevent.SetLocation(ev.Location)
		}

		if ev.AllDay {
			startDay, endDay, err := allDaySpan(ev)
			if err != nil {
				return "", err
			}
			vevent.SetAllDayStartAt(startDay)
			vevent.SetAllDayEndAt(endDay)
		} else {
			vevent.SetStartAt(ev.Start.UTC())
			vevent.SetEndAt(ev.End.UTC())
		}
	}

	return cal.Serialize(), nil
}

// allDaySpan converts the stored local 00:00..23:59 span back to calendar
// days. The exclusive DTEND lands on the day after the last covered day.
func allDaySpan(ev *Event) (time.Time, time.Time, error) {
	loc, err := time.LoadLocation(ev.Timezone)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(err, "event %s has unloadable timezone %q", ev.UID, ev.Timezone)
	}

	localStart := ev.Start.In(loc)
	localEnd := ev.End.In(loc)
	if localEnd.Before(localStart) {
		localEnd = localStart
	}

	startDay := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(localEnd.Year(), localEnd.Month(), localEnd.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return startDay, endDay, nil
}
