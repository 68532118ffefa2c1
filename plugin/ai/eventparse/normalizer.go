package eventparse

import (
	"log/slog"
	"strings"
	"time"

	"github.com/snapcal/snapcal/server/timezone"
)

// Config is the per-process ambient context for normalization: the zone
// assumed for wall-clock times and the year substituted when the source
// text names none.
type Config struct {
	// DisplayTimezone interprets source text that carries no zone.
	// Defaults to America/New_York.
	DisplayTimezone string
	// CurrentYear substitutes when the text names no year. Zero means the
	// wall-clock year at normalization time.
	CurrentYear int
}

// Normalizer reconciles the extraction backend's best guess with explicit
// evidence in the source text, producing events with unambiguous UTC
// instants. It holds no cross-call state; each call is independent.
type Normalizer struct {
	cfg       Config
	validator *Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewNormalizer creates a Normalizer. An invalid or empty display timezone
// falls back to the default rather than failing.
func NewNormalizer(cfg Config, logger *slog.Logger) *Normalizer {
	if cfg.DisplayTimezone == "" || !timezone.IsValidTimezone(cfg.DisplayTimezone) {
		cfg.DisplayTimezone = timezone.TimezoneAmericaNewYork
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		cfg:       cfg,
		validator: NewValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Normalize turns the extraction backend's raw response plus the original
// source text into a ParseResult. A response that cannot be decoded, or
// whose every event fails validation, degrades to the fallback heuristic.
// Normalize never returns an error and never returns zero events.
func (n *Normalizer) Normalize(response, rawText, model string) *ParseResult {
	env, err := DecodeEnvelope(response)
	if err != nil {
		n.logger.Warn("extraction response unusable, falling back", slog.String("error", err.Error()))
		result := n.Fallback(rawText, err.Error())
		result.Model = model
		return result
	}

	// The correction passes read the original source text; when the input
	// was an image the backend's transcription is the closest thing to it.
	extracted := env.RawText
	if extracted == "" {
		extracted = rawText
	}
	sourceText := rawText
	if strings.TrimSpace(sourceText) == "" {
		sourceText = extracted
	}

	events := make([]*ParsedEvent, 0, len(env.Events))
	for _, ai := range env.Events {
		ev, err := n.normalizeOne(ai, sourceText)
		if err != nil {
			// One bad event never sinks its siblings.
			n.logger.Warn("dropping event that failed validation",
				slog.String("title", ai.Title),
				slog.String("error", err.Error()))
			continue
		}
		events = append(events, ev)
	}

	if len(events) == 0 {
		result := n.Fallback(sourceText, "no extracted event survived validation")
		result.Model = model
		result.ExtractedText = extracted
		return result
	}

	return &ParseResult{
		Events:        events,
		Method:        MethodAI,
		Model:         model,
		ExtractedText: extracted,
	}
}

// normalizeOne runs the correction passes for a single event candidate:
// explicit time range, all-day phrasing, and year tokens in the source text
// override the AI's numbers, then the wall clock is projected to UTC.
func (n *Normalizer) normalizeOne(ai *AIEvent, rawText string) (*ParsedEvent, error) {
	tz := ai.Timezone
	if tz == "" || !timezone.IsValidTimezone(tz) {
		tz = n.cfg.DisplayTimezone
	}
	loc := timezone.MustParseTimezone(tz)

	startLocal, haveStart := n.parseAIInstant(ai.Start, tz, loc)
	if !haveStart {
		// No usable start from the backend; scaffold on today's date and
		// let the text corrections fill in what they can.
		nowLocal := n.now().In(loc)
		startLocal = time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc)
	}
	endLocal, haveEnd := n.parseAIInstant(ai.End, tz, loc)
	if !haveEnd || !endLocal.After(startLocal) {
		endLocal = startLocal.Add(time.Hour)
	}

	// Pass 1: explicit clock range in the text wins over the AI's clock.
	if tr, found := ExtractTimeRange(rawText); found {
		y, m, d := startLocal.Date()
		startLocal = time.Date(y, m, d, tr.StartHour, tr.StartMinute, 0, 0, loc)
		endLocal = time.Date(y, m, d, tr.EndHour, tr.EndMinute, 0, 0, loc)
		if tr.EndNextDay {
			endLocal = endLocal.AddDate(0, 0, 1)
		}
	}

	// Pass 2: no year in the text means the AI guessed one; substitute the
	// configured current year on the wall clock and re-project.
	if _, named := InferYear(rawText); !named {
		year := n.currentYear()
		yearShift := endLocal.Year() - startLocal.Year()
		startLocal = time.Date(year, startLocal.Month(), startLocal.Day(),
			startLocal.Hour(), startLocal.Minute(), 0, 0, loc)
		endLocal = time.Date(year+yearShift, endLocal.Month(), endLocal.Day(),
			endLocal.Hour(), endLocal.Minute(), 0, 0, loc)
	}

	// Pass 3: all-day events discard any clock entirely.
	allDay := IsAllDay(rawText, ai.AllDay)
	if allDay {
		endDay := endLocal
		if endDay.Before(startLocal) {
			endDay = startLocal
		}
		startLocal = timezone.StartOfDay(startLocal, loc)
		endLocal = timezone.EndOfDay(endDay, loc)
	}

	if !endLocal.After(startLocal) {
		endLocal = endLocal.AddDate(0, 0, 1)
	}

	tags := DeriveTags(rawText, ai)
	ev := &ParsedEvent{
		Title:       strings.TrimSpace(ai.Title),
		Description: BuildDescription(tags, ai.Description, rawText),
		Location:    strings.TrimSpace(ai.Location),
		StartISO:    FormatInstant(startLocal),
		EndISO:      FormatInstant(endLocal),
		Timezone:    tz,
		AllDay:      allDay,
	}
	if err := n.validator.Validate(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// parseAIInstant parses one of the backend's timestamp strings. A trailing
// "Z" on a non-UTC source zone is a known mislabeling of local wall-clock
// time; the digits are reinterpreted in the assumed zone.
func (n *Normalizer) parseAIInstant(s, tz string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		if strings.HasSuffix(s, "Z") && tz != timezone.TimezoneUTC {
			naked := strings.TrimSuffix(s, "Z")
			if lt, err := time.ParseInLocation("2006-01-02T15:04:05", naked, loc); err == nil {
				return lt, true
			}
			if lt, err := time.ParseInLocation("2006-01-02T15:04", naked, loc); err == nil {
				return lt, true
			}
		}
		return t.In(loc), true
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (n *Normalizer) currentYear() int {
	if n.cfg.CurrentYear != 0 {
		return n.cfg.CurrentYear
	}
	return n.now().Year()
}

// FormatInstant renders an instant as ISO-8601 UTC with a trailing Z.
func FormatInstant(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
