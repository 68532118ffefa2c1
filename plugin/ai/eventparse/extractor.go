package eventparse

import (
	"context"
	"log/slog"
	"strings"

	"github.com/snapcal/snapcal/server/ai"
)

const (
	// MaxInputLength bounds typed text input.
	MaxInputLength = 4000
)

const textSystemPrompt = `You are an event extraction engine. Extract calendar events from the user's text into strict JSON.

Output Schema (JSON only, no prose, no markdown fences):
{
  "rawText": "the input text, verbatim",
  "events": [
    {
      "title": "Concise event title",
      "description": "Details, or empty string",
      "location": "Location name, or empty string",
      "startISO": "YYYY-MM-DDTHH:mm:ss",
      "endISO": "YYYY-MM-DDTHH:mm:ss",
      "timezone": "IANA zone if stated, else empty string",
      "allDay": boolean,
      "hasFreeFood": boolean,
      "registrationNeeded": boolean
    }
  ]
}

Rules:
1. Times are local wall-clock readings as written; do not convert between zones.
2. If no duration is given, end one hour after the start.
3. If only a date is mentioned with no clock time, set "allDay": true.
4. One JSON object per distinct event in the text.`

const visionSystemPrompt = `You are an event extraction engine reading a photographed event poster or flyer.

First transcribe every piece of text you can read on the image, then extract calendar events. Answer with strict JSON (no prose, no markdown fences):
{
  "rawText": "full transcription of the poster text",
  "events": [
    {
      "title": "Concise event title",
      "description": "Details, or empty string",
      "location": "Location name, or empty string",
      "startISO": "YYYY-MM-DDTHH:mm:ss",
      "endISO": "YYYY-MM-DDTHH:mm:ss",
      "timezone": "IANA zone if stated, else empty string",
      "allDay": boolean,
      "hasFreeFood": boolean,
      "registrationNeeded": boolean
    }
  ]
}

Rules:
1. Times are local wall-clock readings as printed; do not convert between zones.
2. If no duration is given, end one hour after the start.
3. If only a date is printed with no clock time, set "allDay": true.
4. The "rawText" transcription matters as much as the events; include dates, times, and years exactly as printed.`

// Backend is the slice of the AI provider the extractor needs. Satisfied by
// *ai.Provider; fakes satisfy it in tests.
type Backend interface {
	Chat(ctx context.Context, messages []ai.Message) (string, error)
	ChatVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
	ChatModel() string
	VisionModel() string
}

// Extractor drives the full capture pipeline: one backend call, then
// normalization of whatever came back. A backend failure degrades to the
// fallback heuristic; no path returns an error.
type Extractor struct {
	backend    Backend
	normalizer *Normalizer
	logger     *slog.Logger
}

// NewExtractor creates an Extractor. The normalizer carries the zone and year
// configuration the correction passes need.
func NewExtractor(backend Backend, normalizer *Normalizer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		backend:    backend,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Fallback exposes the normalizer's last-resort heuristic for callers whose
// input never reaches the backend (unreadable uploads, disabled AI).
func (e *Extractor) Fallback(rawText, reason string) *ParseResult {
	return e.normalizer.Fallback(rawText, reason)
}

// FromText extracts events from typed or OCR-recovered text.
func (e *Extractor) FromText(ctx context.Context, rawText string) *ParseResult {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return e.normalizer.Fallback(rawText, "empty input")
	}
	rawText = truncateRunes(rawText, MaxInputLength)

	response, err := e.backend.Chat(ctx, []ai.Message{
		{Role: "system", Content: textSystemPrompt},
		{Role: "user", Content: rawText},
	})
	if err != nil {
		e.logger.Warn("extraction backend failed, using fallback", slog.String("error", err.Error()))
		result := e.normalizer.Fallback(rawText, err.Error())
		result.Model = e.backend.ChatModel()
		return result
	}

	result := e.normalizer.Normalize(response, rawText, e.backend.ChatModel())
	return result
}

// FromImage extracts events from a poster photo through the vision model. The
// model's transcription doubles as the raw text the correction passes read.
func (e *Extractor) FromImage(ctx context.Context, image []byte, mimeType string) *ParseResult {
	if len(image) == 0 {
		return e.normalizer.Fallback("", "empty image")
	}

	response, err := e.backend.ChatVision(ctx, visionSystemPrompt, image, mimeType)
	if err != nil {
		e.logger.Warn("vision backend failed, using fallback", slog.String("error", err.Error()))
		result := e.normalizer.Fallback("", err.Error())
		result.Model = e.backend.VisionModel()
		return result
	}

	result := e.normalizer.Normalize(response, "", e.backend.VisionModel())
	return result
}
