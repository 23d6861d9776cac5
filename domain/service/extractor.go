package service

import (
	"context"
	"strings"
)

// FieldExtractor runs a generative-vision model against image bytes and
// returns the text it extracted for the named field.
type FieldExtractor interface {
	ExtractField(ctx context.Context, image []byte, field string) (Extraction, error)
}

// Extraction is one vision-model response: the raw extracted text plus an
// optional confidence signal (the mean token log-probability).
type Extraction struct {
	text          string
	avgLogProb    float64
	hasConfidence bool
}

// NewExtraction creates an Extraction without a confidence signal.
func NewExtraction(text string) Extraction {
	return Extraction{text: text}
}

// NewExtractionWithConfidence creates an Extraction carrying a mean
// log-probability.
func NewExtractionWithConfidence(text string, avgLogProb float64) Extraction {
	return Extraction{text: text, avgLogProb: avgLogProb, hasConfidence: true}
}

// Text returns the raw extracted text.
func (e Extraction) Text() string { return e.text }

// Normalized returns the extracted text with all whitespace removed.
// Vision models routinely echo identifiers with stray spaces ("ABC 123");
// the stored value and the derived storage path use the collapsed form.
func (e Extraction) Normalized() string {
	return strings.Join(strings.Fields(e.text), "")
}

// Empty reports whether the extraction carries no usable text.
func (e Extraction) Empty() bool {
	return e.Normalized() == ""
}

// AvgLogProb returns the mean token log-probability and whether the
// provider supplied one.
func (e Extraction) AvgLogProb() (float64, bool) {
	return e.avgLogProb, e.hasConfidence
}

// LowConfidence reports whether the confidence signal is present and
// below the given threshold. A low-confidence extraction is still used;
// callers log it for operator review.
func (e Extraction) LowConfidence(threshold float64) bool {
	return e.hasConfidence && e.avgLogProb < threshold
}
