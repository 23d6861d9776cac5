package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtraction_Normalized(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "ABC123", "ABC123"},
		{"inner space", "ABC 123", "ABC123"},
		{"surrounding whitespace", "  ABC 123 \n", "ABC123"},
		{"tabs and newlines", "A\tB\nC", "ABC"},
		{"empty", "", ""},
		{"only whitespace", "  \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewExtraction(tt.text).Normalized())
		})
	}
}

func TestExtraction_Empty(t *testing.T) {
	assert.True(t, NewExtraction("").Empty())
	assert.True(t, NewExtraction("   ").Empty())
	assert.False(t, NewExtraction("X").Empty())
}

func TestExtraction_LowConfidence(t *testing.T) {
	withConf := NewExtractionWithConfidence("ABC", -1.2)
	assert.True(t, withConf.LowConfidence(-0.5))
	assert.False(t, withConf.LowConfidence(-2.0))

	// Without a confidence signal nothing is flagged.
	without := NewExtraction("ABC")
	assert.False(t, without.LowConfidence(-0.5))

	_, ok := without.AvgLogProb()
	assert.False(t, ok)

	avg, ok := withConf.AvgLogProb()
	assert.True(t, ok)
	assert.InDelta(t, -1.2, avg, 1e-9)
}
