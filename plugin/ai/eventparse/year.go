package eventparse

import (
	"regexp"
	"strconv"
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// InferYear reports the four-digit year named in the text, if any. When
// absent the caller substitutes the configured current year and re-derives
// the instant through the timezone projector, never by rewriting the year
// digits of a UTC string, which can shift the wall-clock day across a DST
// boundary.
func InferYear(rawText string) (int, bool) {
	m := yearPattern.FindString(rawText)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return year, true
}
