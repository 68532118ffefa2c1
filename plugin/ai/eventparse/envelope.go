package eventparse

import (
	"encoding/json"
	"strings"

	pipeerrors "github.com/snapcal/snapcal/internal/errors"
)

// Field aliases tried in priority order; first non-empty wins. The backend
// is duck-typed across several response generations, so every shape it has
// ever produced stays decodable.
var (
	startAliases    = []string{"start", "startISO", "startTime", "start_time"}
	endAliases      = []string{"end", "endISO", "endTime", "end_time"}
	titleAliases    = []string{"title", "summary", "name"}
	descAliases     = []string{"description", "details"}
	locationAliases = []string{"location", "venue", "place"}
	timezoneAliases = []string{"timezone", "timeZone", "tz"}
	rawTextAliases  = []string{"rawText", "raw_text", "extractedText", "text"}
)

// DecodeEnvelope parses the extraction backend's response into an Envelope.
// It tolerates the payload being wrapped in code-fence markup, being an
// array instead of a single object, and omitting any field. A payload with
// no usable event at all is a MALFORMED_RESPONSE.
func DecodeEnvelope(response string) (*Envelope, error) {
	payload := stripCodeFences(response)
	if payload == "" {
		return nil, pipeerrors.MalformedResponse("empty extraction response", nil)
	}

	// Bare array of event objects.
	if strings.HasPrefix(payload, "[") {
		var items []map[string]json.RawMessage
		if err := json.Unmarshal([]byte(payload), &items); err != nil {
			return nil, pipeerrors.MalformedResponse("unparsable extraction response", err)
		}
		return envelopeFromItems("", items)
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return nil, pipeerrors.MalformedResponse("unparsable extraction response", err)
	}

	rawText := firstString(root, rawTextAliases...)

	items := eventItems(root)
	if len(items) == 0 {
		// No event wrapper: the root object may itself be the event.
		if _, ok := firstRaw(root, append(titleAliases, startAliases...)...); ok {
			items = []map[string]json.RawMessage{root}
		}
	}
	if len(items) == 0 {
		return nil, pipeerrors.MalformedResponse("extraction response carries no event", nil)
	}

	return envelopeFromItems(rawText, items)
}

// stripCodeFences removes markdown code-fence wrapping the backend sometimes
// adds around its JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// eventItems pulls the event object or array out of the root, under either
// the "event" or "events" key.
func eventItems(root map[string]json.RawMessage) []map[string]json.RawMessage {
	for _, key := range []string{"event", "events"} {
		raw, ok := root[key]
		if !ok {
			continue
		}
		trimmed := strings.TrimSpace(string(raw))
		if strings.HasPrefix(trimmed, "[") {
			var items []map[string]json.RawMessage
			if err := json.Unmarshal(raw, &items); err == nil {
				return items
			}
			continue
		}
		var item map[string]json.RawMessage
		if err := json.Unmarshal(raw, &item); err == nil && len(item) > 0 {
			return []map[string]json.RawMessage{item}
		}
	}
	return nil
}

func envelopeFromItems(rawText string, items []map[string]json.RawMessage) (*Envelope, error) {
	env := &Envelope{RawText: rawText}
	for _, item := range items {
		if ev := decodeEvent(item); ev != nil {
			env.Events = append(env.Events, ev)
		}
	}
	if len(env.Events) == 0 {
		return nil, pipeerrors.MalformedResponse("extraction response carries no usable event fields", nil)
	}
	return env, nil
}

// decodeEvent resolves one event candidate. Returns nil when the object has
// nothing event-like in it.
func decodeEvent(item map[string]json.RawMessage) *AIEvent {
	ev := &AIEvent{
		Title:       firstString(item, titleAliases...),
		Description: firstString(item, descAliases...),
		Location:    firstString(item, locationAliases...),
		Timezone:    firstString(item, timezoneAliases...),
		Start:       resolveWhen(item, startAliases...),
		End:         resolveWhen(item, endAliases...),
	}

	if raw, ok := firstRaw(item, "allDay", "all_day"); ok {
		var v bool
		if err := json.Unmarshal(raw, &v); err == nil {
			ev.AllDay = v
		}
	}
	if raw, ok := firstRaw(item, "hasFreeFood", "has_free_food", "freeFood"); ok {
		var v bool
		if err := json.Unmarshal(raw, &v); err == nil {
			ev.HasFreeFood = v
		}
	}
	if raw, ok := firstRaw(item, "registrationNeeded", "registration_needed"); ok {
		var v bool
		if err := json.Unmarshal(raw, &v); err == nil {
			ev.RegistrationNeeded = &v
		}
	}

	if ev.Title == "" && ev.Start == "" && ev.Description == "" {
		return nil
	}
	return ev
}

// resolveWhen resolves a timestamp field that may be a plain string under
// any alias, or a nested Google-calendar-style object with a "dateTime" or
// "date" member.
func resolveWhen(item map[string]json.RawMessage, aliases ...string) string {
	for _, key := range aliases {
		raw, ok := item[key]
		if !ok {
			continue
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}

		var nested map[string]string
		if err := json.Unmarshal(raw, &nested); err == nil {
			if v := strings.TrimSpace(nested["dateTime"]); v != "" {
				return v
			}
			if v := strings.TrimSpace(nested["date"]); v != "" {
				return v
			}
		}
	}
	return ""
}

func firstRaw(item map[string]json.RawMessage, aliases ...string) (json.RawMessage, bool) {
	for _, key := range aliases {
		if raw, ok := item[key]; ok && len(raw) > 0 && string(raw) != "null" {
			return raw, true
		}
	}
	return nil, false
}

func firstString(item map[string]json.RawMessage, aliases ...string) string {
	for _, key := range aliases {
		raw, ok := item[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
