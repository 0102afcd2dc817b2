package entropy

import (
	"math"
	"testing"
)

func TestShannon(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "empty string",
			text: "",
			want: 0,
		},
		{
			name: "single repeated character",
			text: "aaaaaaaa",
			want: 0,
		},
		{
			name: "two characters evenly",
			text: "abababab",
			want: 1,
		},
		{
			name: "four distinct characters",
			text: "abcd",
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Shannon(tt.text)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Shannon(%q) = %f, want %f", tt.text, got, tt.want)
			}
		})
	}
}

func TestShannonOrdering(t *testing.T) {
	low := Shannon("aaaaaaaaaaaaaaaaaaaaaaaa")
	high := Shannon("aB3xK9mQ7zL2vN8pR5tY1wE6")
	if low >= high {
		t.Errorf("expected repeated characters (%f) to score below random material (%f)", low, high)
	}
}

func TestFlagged(t *testing.T) {
	flagger := NewFlagger()

	tests := []struct {
		name    string
		text    string
		flagged bool
	}{
		{
			name:    "short token never flagged",
			text:    "aB3xK9mQ7z",
			flagged: false,
		},
		{
			name:    "long low entropy token not flagged",
			text:    "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			flagged: false,
		},
		{
			name:    "long random token flagged",
			text:    "aB3xK9mQ7zL2vN8pR5tY1wE6u",
			flagged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, flagged := flagger.Flagged(tt.text)
			if flagged != tt.flagged {
				t.Errorf("Flagged(%q) = %v (entropy %f), want %v", tt.text, flagged, h, tt.flagged)
			}
		})
	}
}
