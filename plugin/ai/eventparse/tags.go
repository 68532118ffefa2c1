package eventparse

import (
	"regexp"
	"strings"
)

// Human-readable tags prepended to event descriptions.
const (
	TagFreeFood               = "#Free Food"
	TagRegistrationNeeded     = "#Registration Needed"
	TagRegistrationNotMention = "#Registration Not Mentioned"
)

var (
	freeFoodPattern     = regexp.MustCompile(`(?i)\bfree\s+(food|pizza|lunch|dinner|breakfast|snacks|refreshments)\b`)
	registrationPattern = regexp.MustCompile(`(?i)\b(register|registration|rsvp|sign[\s-]?up)\b`)
)

// DeriveTags computes the description hashtags from the AI's flags and from
// cues in the raw text. The registration tag is always present, one way or
// the other.
func DeriveTags(rawText string, ai *AIEvent) []string {
	tags := []string{}

	if (ai != nil && ai.HasFreeFood) || freeFoodPattern.MatchString(rawText) {
		tags = append(tags, TagFreeFood)
	}

	registration := registrationPattern.MatchString(rawText)
	if ai != nil && ai.RegistrationNeeded != nil {
		registration = registration || *ai.RegistrationNeeded
	}
	if registration {
		tags = append(tags, TagRegistrationNeeded)
	} else {
		tags = append(tags, TagRegistrationNotMention)
	}

	return tags
}

// BuildDescription prepends the hashtag line ahead of the extracted text,
// separated by a blank line. The raw text is not appended again when the
// AI's description already contains it.
func BuildDescription(tags []string, aiDescription, rawText string) string {
	body := strings.TrimSpace(aiDescription)
	raw := strings.TrimSpace(rawText)
	if raw != "" && !strings.Contains(body, raw) {
		if body != "" {
			body += "\n\n"
		}
		body += raw
	}

	if len(tags) == 0 {
		return body
	}
	if body == "" {
		return strings.Join(tags, " ")
	}
	return strings.Join(tags, " ") + "\n\n" + body
}
