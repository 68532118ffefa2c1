package eventparse

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kaptinlin/jsonschema"

	pipeerrors "github.com/snapcal/snapcal/internal/errors"
)

// parsedEventSchema is the shape every normalized event must satisfy before
// it leaves the pipeline.
const parsedEventSchema = `{
	"type": "object",
	"required": ["title", "startISO", "endISO"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"location": {"type": "string"},
		"startISO": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}T\\d{2}:\\d{2}:\\d{2}Z$"},
		"endISO": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}T\\d{2}:\\d{2}:\\d{2}Z$"},
		"timezone": {"type": "string"},
		"allDay": {"type": "boolean"}
	},
	"additionalProperties": false
}`

// Validator checks normalized events against the ParsedEvent schema plus the
// chronological invariants the schema cannot express.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the event schema. The schema is a compile-time
// constant, so failure to compile is a programming error.
func NewValidator() *Validator {
	schema, err := jsonschema.NewCompiler().Compile([]byte(parsedEventSchema))
	if err != nil {
		panic(fmt.Sprintf("eventparse: invalid event schema: %v", err))
	}
	return &Validator{schema: schema}
}

// Validate returns a VALIDATION_FAILED error describing the first problem
// found, or nil. No naive or local-only timestamp ever passes.
func (v *Validator) Validate(ev *ParsedEvent) error {
	if ev == nil {
		return pipeerrors.ValidationFailed("event is nil")
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return pipeerrors.ValidationFailed(fmt.Sprintf("event not serializable: %v", err))
	}
	result := v.schema.Validate(payload)
	if !result.IsValid() {
		for field, verr := range result.Errors {
			return pipeerrors.ValidationFailed(fmt.Sprintf("%s: %s", field, verr.Message))
		}
		return pipeerrors.ValidationFailed("event does not match schema")
	}

	start, err := time.Parse(time.RFC3339, ev.StartISO)
	if err != nil {
		return pipeerrors.ValidationFailed(fmt.Sprintf("startISO not a UTC instant: %v", err))
	}
	end, err := time.Parse(time.RFC3339, ev.EndISO)
	if err != nil {
		return pipeerrors.ValidationFailed(fmt.Sprintf("endISO not a UTC instant: %v", err))
	}
	if end.Before(start) {
		return pipeerrors.ValidationFailed(fmt.Sprintf("end %s precedes start %s", ev.EndISO, ev.StartISO))
	}
	return nil
}
