package eventparse

import (
	"regexp"
	"strconv"
	"strings"
)

// TimeRange is an extracted clock range in 24-hour form. EndNextDay is set
// when the converted end is not strictly after the start, meaning the range
// wraps past midnight (e.g. "10pm-2am").
type TimeRange struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
	EndNextDay  bool
}

// The separator accepts hyphen, en-dash, and em-dash, with or without spaces.
// The leading (?:^|[^:\d]) guard keeps the minutes of "10:30AM" from being
// read as a bare hour.
var timeRangePatterns = []*regexp.Regexp{
	// "6-9pm", "6 – 9 pm": one shared meridiem, no minutes.
	regexp.MustCompile(`(?i)(?:^|[^:\d])(\d{1,2})\s*[-–—]\s*(\d{1,2})\s*([ap])\.?m\b`),
	// "6:00 - 9:00 PM": one shared meridiem, with minutes.
	regexp.MustCompile(`(?i)(?:^|[^:\d])(\d{1,2}):(\d{2})\s*[-–—]\s*(\d{1,2}):(\d{2})\s*([ap])\.?m\b`),
	// "6pm-9pm": each end has its own meridiem, no minutes.
	regexp.MustCompile(`(?i)(?:^|[^:\d])(\d{1,2})\s*([ap])\.?m\.?\s*[-–—]\s*(\d{1,2})\s*([ap])\.?m\b`),
	// "6:00 PM - 9:00 PM": each end has its own meridiem, with minutes.
	regexp.MustCompile(`(?i)(?:^|[^:\d])(\d{1,2}):(\d{2})\s*([ap])\.?m\.?\s*[-–—]\s*(\d{1,2}):(\d{2})\s*([ap])\.?m\b`),
	// "10:30AM-4PM": start has minutes and meridiem, end has meridiem only.
	regexp.MustCompile(`(?i)(?:^|[^:\d])(\d{1,2}):(\d{2})\s*([ap])\.?m\.?\s*[-–—]\s*(\d{1,2})\s*([ap])\.?m\b`),
}

// ExtractTimeRange scans raw text for an explicit clock range. Patterns are
// tried in a fixed priority order and the first structural match wins; the
// scan never continues past a match, so a sub-string of an already-matched
// range cannot be re-extracted. Returns false when no pattern matches;
// callers keep whatever time the AI proposed.
func ExtractTimeRange(rawText string) (TimeRange, bool) {
	for i, pattern := range timeRangePatterns {
		for _, m := range pattern.FindAllStringSubmatch(rawText, -1) {
			var sh, sm, eh, em int
			var smer, emer string
			switch i {
			case 0: // H - H m
				sh, eh = atoi(m[1]), atoi(m[2])
				smer, emer = m[3], m[3]
			case 1: // H:MM - H:MM m
				sh, sm, eh, em = atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4])
				smer, emer = m[5], m[5]
			case 2: // Hm - Hm
				sh, smer, eh, emer = atoi(m[1]), m[2], atoi(m[3]), m[4]
			case 3: // H:MM m - H:MM m
				sh, sm, smer = atoi(m[1]), atoi(m[2]), m[3]
				eh, em, emer = atoi(m[4]), atoi(m[5]), m[6]
			case 4: // H:MM m - H m
				sh, sm, smer = atoi(m[1]), atoi(m[2]), m[3]
				eh, emer = atoi(m[4]), m[5]
			}

			if !validClock(sh, sm) || !validClock(eh, em) {
				// Shaped like a range but not a 12-hour clock reading
				// (a score line, a room number); keep scanning.
				continue
			}

			r := TimeRange{
				StartHour:   to24Hour(sh, smer),
				StartMinute: sm,
				EndHour:     to24Hour(eh, emer),
				EndMinute:   em,
			}
			if r.EndHour*60+r.EndMinute <= r.StartHour*60+r.StartMinute {
				r.EndNextDay = true
			}
			return r, true
		}
	}
	return TimeRange{}, false
}

// to24Hour converts a 12-hour reading: 12pm -> 12, 12am -> 0,
// Npm (N != 12) -> N+12, Nam (N != 12) -> N.
func to24Hour(hour int, meridiem string) int {
	pm := strings.EqualFold(meridiem, "p")
	switch {
	case pm && hour != 12:
		return hour + 12
	case !pm && hour == 12:
		return 0
	default:
		return hour
	}
}

func validClock(hour, minute int) bool {
	return hour >= 1 && hour <= 12 && minute >= 0 && minute <= 59
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
