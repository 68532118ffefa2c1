package eventparse

import "testing"

func TestExtractTimeRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TimeRange
		found bool
	}{
		{
			name:  "shared meridiem no minutes",
			input: "Trivia night 6-9pm in the lounge",
			want:  TimeRange{StartHour: 18, EndHour: 21},
			found: true,
		},
		{
			name:  "shared meridiem spaced en-dash",
			input: "Doors 6 – 9 pm",
			want:  TimeRange{StartHour: 18, EndHour: 21},
			found: true,
		},
		{
			name:  "shared meridiem with minutes",
			input: "6:00 - 9:00 PM",
			want:  TimeRange{StartHour: 18, EndHour: 21},
			found: true,
		},
		{
			name:  "each end own meridiem",
			input: "September 17th CC 6pm - 9pm",
			want:  TimeRange{StartHour: 18, EndHour: 21},
			found: true,
		},
		{
			name:  "own meridiem with minutes",
			input: "6:00 PM - 9:00 PM",
			want:  TimeRange{StartHour: 18, EndHour: 21},
			found: true,
		},
		{
			name:  "mixed minutes then bare hour",
			input: "Career fair 10:30AM-4PM at the union",
			want:  TimeRange{StartHour: 10, StartMinute: 30, EndHour: 16},
			found: true,
		},
		{
			name:  "em-dash separator",
			input: "6PM—9PM",
			want:  TimeRange{StartHour: 18, EndHour: 21},
			found: true,
		},
		{
			name:  "noon and midnight conversion",
			input: "12pm-12am",
			want:  TimeRange{StartHour: 12, EndHour: 0, EndNextDay: true},
			found: true,
		},
		{
			name:  "wrap past midnight",
			input: "Late skate 10pm-2am",
			want:  TimeRange{StartHour: 22, EndHour: 2, EndNextDay: true},
			found: true,
		},
		{
			name:  "morning range",
			input: "8-11am breakfast",
			want:  TimeRange{StartHour: 8, EndHour: 11},
			found: true,
		},
		{
			name:  "no time info",
			input: "no time info",
			found: false,
		},
		{
			name:  "date range is not a clock range",
			input: "Conference 2025-09-17",
			found: false,
		},
		{
			name:  "score line is not a clock range",
			input: "final was 24-17 pm me for details",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractTimeRange(tt.input)
			if found != tt.found {
				t.Fatalf("ExtractTimeRange(%q) found = %v, want %v", tt.input, found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("ExtractTimeRange(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractTimeRangeFirstMatchWins(t *testing.T) {
	// Two ranges in one poster: only the first structural match is taken.
	got, found := ExtractTimeRange("Setup 2pm-4pm, doors 6pm-9pm")
	if !found {
		t.Fatal("expected a match")
	}
	if got.StartHour != 14 || got.EndHour != 16 {
		t.Errorf("got %+v, want the 2pm-4pm range", got)
	}
}

func TestTo24Hour(t *testing.T) {
	tests := []struct {
		hour     int
		meridiem string
		want     int
	}{
		{12, "p", 12},
		{12, "a", 0},
		{6, "p", 18},
		{6, "a", 6},
		{11, "P", 23},
		{1, "A", 1},
	}
	for _, tt := range tests {
		if got := to24Hour(tt.hour, tt.meridiem); got != tt.want {
			t.Errorf("to24Hour(%d, %q) = %d, want %d", tt.hour, tt.meridiem, got, tt.want)
		}
	}
}
