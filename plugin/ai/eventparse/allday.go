package eventparse

import "regexp"

var (
	allDayPhrasePattern = regexp.MustCompile(`(?i)\ball[\s-]?day\b|\bfull day\b|\bentire day\b|\bwhole day\b`)

	// A clock reading: "6:30", "6pm", "11 AM". The digit prefix keeps prose
	// like "I am going" from counting as a time of day.
	timeOfDayPattern = regexp.MustCompile(`(?i)\d{1,2}:\d{2}|\d{1,2}\s*[ap]\.?m\b`)
)

// IsAllDay decides whether an event has no meaningful time of day.
// An explicit clock time in the source text defeats the AI's all-day flag;
// absence of any clock time reads as all-day regardless of it.
func IsAllDay(rawText string, aiSaidAllDay bool) bool {
	if aiSaidAllDay && !timeOfDayPattern.MatchString(rawText) {
		return true
	}
	if allDayPhrasePattern.MatchString(rawText) {
		return true
	}
	return !timeOfDayPattern.MatchString(rawText)
}
