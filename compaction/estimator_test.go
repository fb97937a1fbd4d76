package compaction

import (
	"strings"
	"testing"
)

func TestHeuristicEstimator(t *testing.T) {
	est := HeuristicEstimator{}
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"abcde", 1},
		{strings.Repeat("x", 200), 50},
		{strings.Repeat("x", 201), 50},
	}
	for _, tt := range tests {
		if got := est.Estimate(tt.text); got != tt.want {
			t.Errorf("Estimate(%d chars) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}

func TestTiktokenEstimatorFallsBackOrCounts(t *testing.T) {
	est := NewTiktokenEstimator()
	got := est.Estimate("hello world, this is a token counting test")
	if got <= 0 {
		t.Errorf("expected a positive estimate, got %d", got)
	}
}
