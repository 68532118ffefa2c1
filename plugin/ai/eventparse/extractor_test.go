package eventparse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/snapcal/snapcal/server/ai"
)

type fakeBackend struct {
	chatResponse   string
	visionResponse string
	err            error
	lastPrompt     string
}

func (f *fakeBackend) Chat(_ context.Context, messages []ai.Message) (string, error) {
	if len(messages) > 0 {
		f.lastPrompt = messages[len(messages)-1].Content
	}
	return f.chatResponse, f.err
}

func (f *fakeBackend) ChatVision(_ context.Context, _ string, _ []byte, _ string) (string, error) {
	return f.visionResponse, f.err
}

func (f *fakeBackend) ChatModel() string   { return "fake-chat" }
func (f *fakeBackend) VisionModel() string { return "fake-vision" }

func TestExtractorFromText(t *testing.T) {
	backend := &fakeBackend{
		chatResponse: `{"rawText": "Hack Night Oct 3 2025 7pm-10pm", "events": [
			{"title": "Hack Night", "startISO": "2025-10-03T19:00:00", "endISO": "2025-10-03T22:00:00"}
		]}`,
	}
	ex := NewExtractor(backend, newTestNormalizer(t, Config{CurrentYear: 2025}), nil)

	result := ex.FromText(context.Background(), "Hack Night Oct 3 2025 7pm-10pm")
	require.Equal(t, MethodAI, result.Method)
	require.Equal(t, "fake-chat", result.Model)
	require.Len(t, result.Events, 1)
	require.Equal(t, "Hack Night", result.Events[0].Title)
	require.Equal(t, "Hack Night Oct 3 2025 7pm-10pm", backend.lastPrompt)
}

func TestExtractorFromTextTruncatesOnRuneBoundary(t *testing.T) {
	backend := &fakeBackend{chatResponse: `{"rawText": "", "events": []}`}
	ex := NewExtractor(backend, newTestNormalizer(t, Config{}), nil)

	// Multi-byte runes past the cap must never be split mid-sequence.
	ex.FromText(context.Background(), strings.Repeat("ö", MaxInputLength+100))
	require.True(t, utf8.ValidString(backend.lastPrompt))
	require.Equal(t, MaxInputLength, utf8.RuneCountInString(backend.lastPrompt))
}

func TestExtractorFromTextBackendDown(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	ex := NewExtractor(backend, newTestNormalizer(t, Config{}), nil)

	result := ex.FromText(context.Background(), "Pizza party tomorrow 6pm")
	require.Equal(t, MethodFallback, result.Method)
	require.Equal(t, "fake-chat", result.Model)
	require.Len(t, result.Events, 1)
	require.Equal(t, "Pizza party tomorrow 6pm", result.Events[0].Title)
}

func TestExtractorFromTextEmptyInput(t *testing.T) {
	backend := &fakeBackend{}
	ex := NewExtractor(backend, newTestNormalizer(t, Config{}), nil)

	result := ex.FromText(context.Background(), "   ")
	require.Equal(t, MethodFallback, result.Method)
	require.Len(t, result.Events, 1)
	require.Empty(t, backend.lastPrompt, "backend must not be called for empty input")
}

func TestExtractorFromImage(t *testing.T) {
	backend := &fakeBackend{
		visionResponse: `{"rawText": "SPRING CONCERT\nMay 9, 2025\n7:30 PM - 9:30 PM\nMain Hall", "events": [
			{"title": "Spring Concert", "location": "Main Hall", "startISO": "2025-05-09T19:30:00"}
		]}`,
	}
	ex := NewExtractor(backend, newTestNormalizer(t, Config{CurrentYear: 2025}), nil)

	result := ex.FromImage(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	require.Equal(t, MethodAI, result.Method)
	require.Equal(t, "fake-vision", result.Model)
	require.Len(t, result.Events, 1)
	require.Contains(t, result.ExtractedText, "SPRING CONCERT")
	// The transcription's "7:30 PM - 9:30 PM" overrides whatever the model
	// guessed for the clock.
	require.Equal(t, "2025-05-09T23:30:00Z", result.Events[0].StartISO)
	require.Equal(t, "2025-05-10T01:30:00Z", result.Events[0].EndISO)
}
