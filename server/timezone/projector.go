// Package timezone projects wall-clock times between named IANA zones and
// absolute UTC instants.
//
// The zone database is the real one: time.LoadLocation, backed by the
// embedded time/tzdata fallback imported in cmd. Times inside a DST
// transition hour resolve per time.Date semantics.
package timezone

import (
	"time"

	"github.com/pkg/errors"

	pipeerrors "github.com/snapcal/snapcal/internal/errors"
)

// Default location constants
var (
	// UTC is the coordinated universal time timezone
	UTC = time.UTC
)

// Common timezone constants
const (
	// TimezoneUTC is the UTC timezone identifier
	TimezoneUTC = "UTC"

	// TimezoneAmericaNewYork is the Eastern Time timezone, the default
	// display timezone for source text that names no zone.
	TimezoneAmericaNewYork = "America/New_York"
)

// LocalComponents is the wall-clock reading of an instant in some zone.
type LocalComponents struct {
	Year    int
	Month   int
	Day     int
	Hours   int
	Minutes int
	Seconds int
}

// ParseTimezone parses an IANA timezone identifier (e.g., "America/New_York").
// If the timezone is invalid, returns UTC and an INVALID_TIMEZONE error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == TimezoneUTC {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, pipeerrors.InvalidTimezone(tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// ToUTC interprets dateStr ("2006-01-02") plus timeStr ("15:04") as a
// wall-clock reading in the named zone and returns the absolute instant.
func ToUTC(dateStr, timeStr, tz string) (time.Time, error) {
	loc, err := ParseTimezone(tz)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid wall-clock time %q %q", dateStr, timeStr)
	}
	return t.UTC(), nil
}

// ToLocalComponents reads an instant as wall-clock components in the named zone.
func ToLocalComponents(instant time.Time, tz string) (LocalComponents, error) {
	loc, err := ParseTimezone(tz)
	if err != nil {
		return LocalComponents{}, err
	}

	local := instant.In(loc)
	return LocalComponents{
		Year:    local.Year(),
		Month:   int(local.Month()),
		Day:     local.Day(),
		Hours:   local.Hour(),
		Minutes: local.Minute(),
		Seconds: local.Second(),
	}, nil
}

// Project re-expresses a wall-clock reading in the named zone as an instant.
// Unlike ToUTC it takes components directly, which keeps year substitution
// and midnight rollovers on the wall-clock side of the conversion.
func Project(year int, month time.Month, day, hour, minute int, tz string) (time.Time, error) {
	loc, err := ParseTimezone(tz)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc).UTC(), nil
}

// StartOfDay returns the instant of 00:00 local on the instant's day in the given zone.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the instant of 23:59 local on the instant's day in the given zone.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 0, 0, loc)
}

// FormatEventTime formats an event's time for display.
// Rules:
//   - All-day event: "2006-01-02"
//   - Timed event: "2006-01-02 15:04 - 16:00"
func FormatEventTime(start, end time.Time, allDay bool, loc *time.Location) string {
	if loc == nil {
		loc = UTC
	}
	s := start.In(loc)
	if allDay {
		return s.Format("2006-01-02")
	}
	return s.Format("2006-01-02 15:04") + " - " + end.In(loc).Format("15:04")
}
