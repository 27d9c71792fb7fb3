package views

import (
	"testing"
	"time"
)

// TestFormatDisplayTime pins the display contract: fixed UTC+7, day and
// month unpadded, time fields zero-padded.
func TestFormatDisplayTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "stored UTC converts to UTC+7",
			input: "2024-03-05T10:00:00Z",
			want:  "5/3/2024 17:00:00",
		},
		{
			name:  "single digit hour is zero padded",
			input: "2024-01-09T02:04:09Z",
			want:  "9/1/2024 09:04:09",
		},
		{
			name:  "conversion crosses midnight and year",
			input: "2024-12-31T18:30:05Z",
			want:  "1/1/2025 01:30:05",
		},
		{
			name:  "two digit day and month stay as is",
			input: "2024-11-20T05:00:00Z",
			want:  "20/11/2024 12:00:00",
		},
		{
			name:  "offset input normalizes to the same wall clock",
			input: "2024-03-05T17:00:00+07:00",
			want:  "5/3/2024 17:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := time.Parse(time.RFC3339, tt.input)
			if err != nil {
				t.Fatalf("bad test input %q: %v", tt.input, err)
			}

			got, err := FormatDisplayTime(ts)
			if err != nil {
				t.Fatalf("FormatDisplayTime() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatDisplayTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDisplayTime_ZeroTime(t *testing.T) {
	if _, err := FormatDisplayTime(time.Time{}); err == nil {
		t.Error("FormatDisplayTime(zero) = nil error, want error")
	}
}
