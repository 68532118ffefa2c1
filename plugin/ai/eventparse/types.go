// Package eventparse normalizes AI-extracted event candidates into calendar
// events with unambiguous UTC instants.
//
// The extraction backend's numbers are treated as a best guess only: explicit
// time ranges, all-day phrasing, and year tokens found in the original source
// text override them, because the raw text is the ground truth the AI may
// have corrupted.
package eventparse

// Method identifies how a ParseResult was produced.
type Method string

const (
	// MethodAI means the events came from the extraction backend.
	MethodAI Method = "ai"
	// MethodFallback means the placeholder heuristic produced the event.
	MethodFallback Method = "fallback"
)

// Input types recorded as provenance alongside persisted events.
const (
	InputTypeText  = "text"
	InputTypeImage = "image"
)

// ParsedEvent is one normalized calendar event. StartISO and EndISO are
// absolute UTC instants in ISO-8601 with a trailing Z; Timezone records the
// IANA zone used to interpret the source text's wall clock, and is not
// reapplied on reread.
type ParsedEvent struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartISO    string `json:"startISO"`
	EndISO      string `json:"endISO"`
	Timezone    string `json:"timezone,omitempty"`
	AllDay      bool   `json:"allDay,omitempty"`
}

// ParseResult is the normalizer's output envelope. Every normalization call
// yields one, even on total failure (Method "fallback" with a Reason).
type ParseResult struct {
	Events        []*ParsedEvent `json:"events"`
	Method        Method         `json:"method"`
	Reason        string         `json:"reason,omitempty"`
	Model         string         `json:"model,omitempty"`
	ExtractedText string         `json:"extractedText,omitempty"`
}

// AIEvent is one event candidate as reported by the extraction backend,
// after field-priority resolution over its polymorphic JSON shapes.
type AIEvent struct {
	Title              string
	Description        string
	Location           string
	Start              string
	End                string
	Timezone           string
	AllDay             bool
	HasFreeFood        bool
	RegistrationNeeded *bool
}

// Envelope is the decoded extraction response: the text the backend read
// (OCR'd or verbatim) plus its event candidates.
type Envelope struct {
	RawText string
	Events  []*AIEvent
}
