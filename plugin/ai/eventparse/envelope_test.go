package eventparse

import (
	"testing"

	"github.com/stretchr/testify/require"

	pipeerrors "github.com/snapcal/snapcal/internal/errors"
)

func TestDecodeEnvelopeObject(t *testing.T) {
	response := `{
		"rawText": "Trivia Night 6pm-9pm",
		"event": {
			"title": "Trivia Night",
			"location": "Campus Center",
			"startISO": "2025-09-17T18:00:00Z",
			"endISO": "2025-09-17T21:00:00Z",
			"timezone": "America/New_York",
			"hasFreeFood": true,
			"registrationNeeded": false
		}
	}`

	env, err := DecodeEnvelope(response)
	require.NoError(t, err)
	require.Equal(t, "Trivia Night 6pm-9pm", env.RawText)
	require.Len(t, env.Events, 1)

	ev := env.Events[0]
	require.Equal(t, "Trivia Night", ev.Title)
	require.Equal(t, "Campus Center", ev.Location)
	require.Equal(t, "2025-09-17T18:00:00Z", ev.Start)
	require.Equal(t, "America/New_York", ev.Timezone)
	require.True(t, ev.HasFreeFood)
	require.NotNil(t, ev.RegistrationNeeded)
	require.False(t, *ev.RegistrationNeeded)
}

func TestDecodeEnvelopeCodeFenced(t *testing.T) {
	response := "```json\n{\"rawText\": \"Gala\", \"event\": {\"title\": \"Gala\", \"start\": \"2025-05-01T19:00:00\"}}\n```"

	env, err := DecodeEnvelope(response)
	require.NoError(t, err)
	require.Len(t, env.Events, 1)
	require.Equal(t, "Gala", env.Events[0].Title)
	require.Equal(t, "2025-05-01T19:00:00", env.Events[0].Start)
}

func TestDecodeEnvelopeEventArray(t *testing.T) {
	response := `{"rawText": "two shows", "events": [
		{"title": "Matinee", "startTime": "2025-05-01 14:00"},
		{"title": "Evening", "startTime": "2025-05-01 19:00"}
	]}`

	env, err := DecodeEnvelope(response)
	require.NoError(t, err)
	require.Len(t, env.Events, 2)
	require.Equal(t, "Matinee", env.Events[0].Title)
	require.Equal(t, "2025-05-01 19:00", env.Events[1].Start)
}

func TestDecodeEnvelopeBareArray(t *testing.T) {
	response := `[{"title": "A"}, {"title": "B"}]`

	env, err := DecodeEnvelope(response)
	require.NoError(t, err)
	require.Len(t, env.Events, 2)
}

func TestDecodeEnvelopeBareEventObject(t *testing.T) {
	response := `{"title": "Standalone", "start": "2025-06-01T10:00:00Z"}`

	env, err := DecodeEnvelope(response)
	require.NoError(t, err)
	require.Len(t, env.Events, 1)
	require.Equal(t, "Standalone", env.Events[0].Title)
}

func TestDecodeEnvelopeNestedDateTime(t *testing.T) {
	response := `{"event": {
		"title": "Synced",
		"start": {"dateTime": "2025-06-01T10:00:00-04:00"},
		"end": {"date": "2025-06-01"}
	}}`

	env, err := DecodeEnvelope(response)
	require.NoError(t, err)
	require.Equal(t, "2025-06-01T10:00:00-04:00", env.Events[0].Start)
	require.Equal(t, "2025-06-01", env.Events[0].End)
}

func TestDecodeEnvelopeFieldPriority(t *testing.T) {
	// "start" wins over "startISO" and "startTime" when several are present.
	response := `{"event": {
		"title": "Priority",
		"start": "2025-06-01T10:00:00Z",
		"startISO": "2025-06-02T10:00:00Z",
		"startTime": "2025-06-03T10:00:00Z"
	}}`

	env, err := DecodeEnvelope(response)
	require.NoError(t, err)
	require.Equal(t, "2025-06-01T10:00:00Z", env.Events[0].Start)
}

func TestDecodeEnvelopeMalformed(t *testing.T) {
	for name, response := range map[string]string{
		"empty":        "",
		"prose":        "Sorry, I could not find an event in that text.",
		"fenced prose": "```\nnot json\n```",
		"no event":     `{"rawText": "something"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEnvelope(response)
			require.Error(t, err)
			require.True(t, pipeerrors.IsCode(err, pipeerrors.ErrCodeMalformedResponse))
		})
	}
}
