package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeConfidence(t *testing.T) {
	tests := []struct {
		name             string
		trend, macd, adx float64
		want             Confidence
	}{
		{"all bullish aligned", 8, 7, 7, ConfidenceHigh},
		{"all bearish aligned", 3, 2, 4, ConfidenceHigh},
		{"all bearish but trendless", 3, 2, 2, ConfidenceLow},
		{"conflicting signals", 8, 2, 7, ConfidenceLow},
		{"momentum without direction", 4.5, 7, 5, ConfidenceLow},
		{"no tradeable trend", 5, 5, 3.5, ConfidenceLow},
		{"mixed but not conflicting", 5, 5, 5, ConfidenceMedium},
		{"two bullish one neutral", 7, 6, 5, ConfidenceMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeConfidence(tt.trend, tt.macd, tt.adx))
		})
	}
}

// Conflict detection must win over alignment when a signal set could be read
// both ways. Two strong bulls plus one hard bear is a conflict, not HIGH
// confidence from the bullish pair.
func TestComputeConfidenceConflictBeatsAlignment(t *testing.T) {
	assert.Equal(t, ConfidenceLow, ComputeConfidence(9, 9, 2))
	assert.Equal(t, ConfidenceLow, ComputeConfidence(2, 2, 9))
}
