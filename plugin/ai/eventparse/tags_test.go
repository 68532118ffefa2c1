package eventparse

import (
	"strings"
	"testing"
)

func boolPtr(v bool) *bool { return &v }

func TestDeriveTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ai   *AIEvent
		want []string
	}{
		{
			name: "ai flags",
			raw:  "Club meeting tonight",
			ai:   &AIEvent{HasFreeFood: true, RegistrationNeeded: boolPtr(true)},
			want: []string{TagFreeFood, TagRegistrationNeeded},
		},
		{
			name: "text cues without ai flags",
			raw:  "Free pizza! RSVP by Friday",
			ai:   &AIEvent{},
			want: []string{TagFreeFood, TagRegistrationNeeded},
		},
		{
			name: "nothing mentioned",
			raw:  "Quiet study hours",
			ai:   &AIEvent{},
			want: []string{TagRegistrationNotMention},
		},
		{
			name: "registration from sign-up",
			raw:  "Sign up at the front desk",
			ai:   nil,
			want: []string{TagRegistrationNeeded},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTags(tt.raw, tt.ai)
			if len(got) != len(tt.want) {
				t.Fatalf("DeriveTags() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("DeriveTags()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildDescription(t *testing.T) {
	tags := []string{TagFreeFood, TagRegistrationNotMention}

	t.Run("raw text appended after blank line", func(t *testing.T) {
		got := BuildDescription(tags, "", "Trivia Night 6pm-9pm")
		want := TagFreeFood + " " + TagRegistrationNotMention + "\n\nTrivia Night 6pm-9pm"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("raw text not duplicated", func(t *testing.T) {
		desc := "Join us! Trivia Night 6pm-9pm"
		got := BuildDescription(tags, desc, "Trivia Night 6pm-9pm")
		if strings.Count(got, "Trivia Night 6pm-9pm") != 1 {
			t.Errorf("raw text duplicated in %q", got)
		}
	})

	t.Run("no tags", func(t *testing.T) {
		got := BuildDescription(nil, "", "just text")
		if got != "just text" {
			t.Errorf("got %q", got)
		}
	})
}
