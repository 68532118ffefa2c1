package eventparse

import (
	"strings"
	"time"
)

const (
	fallbackTitleLimit = 60
	fallbackDescLimit  = 500
	fallbackTitle      = "Untitled Event"
)

// Fallback is the last-resort event constructor, used when the extraction
// backend is unreachable or its output is unusable: a single one-hour
// placeholder starting one hour from now. It always succeeds.
func (n *Normalizer) Fallback(rawText, reason string) *ParseResult {
	start := n.now().UTC().Truncate(time.Second).Add(time.Hour)
	end := start.Add(time.Hour)

	event := &ParsedEvent{
		Title:       fallbackTitleFrom(rawText),
		Description: truncateRunes(strings.TrimSpace(rawText), fallbackDescLimit),
		StartISO:    FormatInstant(start),
		EndISO:      FormatInstant(end),
		Timezone:    n.cfg.DisplayTimezone,
	}

	return &ParseResult{
		Events: []*ParsedEvent{event},
		Method: MethodFallback,
		Reason: reason,
	}
}

// fallbackTitleFrom titles the placeholder from the input's first line.
func fallbackTitleFrom(rawText string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(rawText), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return fallbackTitle
	}
	return truncateRunes(line, fallbackTitleLimit)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
