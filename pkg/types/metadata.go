// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pdfmeta pipeline.
package types

// ConfidenceTier buckets a match score for display and auto-accept decisions.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "HIGH"
	TierMedium ConfidenceTier = "MEDIUM"
	TierLow    ConfidenceTier = "LOW"
)

// Match is a scored candidate record returned by the catalog client. Every
// match carries a non-empty DOI and title; records lacking either are
// discarded before scoring.
type Match struct {
	// DOI is the candidate's digital object identifier.
	DOI string `json:"doi" yaml:"doi"`

	// Title is the candidate's primary title.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in record order ("Given Family").
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the 4-digit publication year, empty when unknown.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Journal is the container title, empty when unknown.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// ISBN is populated only by direct DOI lookups, when present on the record.
	ISBN string `json:"isbn,omitempty" yaml:"isbn,omitempty"`

	// Score is the weighted match score in [0,1].
	Score float64 `json:"score" yaml:"score"`
}

// Tier returns the confidence bucket for the match score: HIGH at or above
// 0.80, MEDIUM at or above 0.65, LOW below.
func (m Match) Tier() ConfidenceTier {
	switch {
	case m.Score >= 0.80:
		return TierHigh
	case m.Score >= 0.65:
		return TierMedium
	default:
		return TierLow
	}
}

// MetadataUpdate is the payload written into a PDF's metadata.
type MetadataUpdate struct {
	// Title is the article title. Required.
	Title string `json:"title" yaml:"title"`

	// Authors is the semicolon-joined author list.
	Authors string `json:"authors" yaml:"authors"`

	Year    string `json:"year,omitempty" yaml:"year,omitempty"`
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
	DOI     string `json:"doi,omitempty" yaml:"doi,omitempty"`
	ISBN    string `json:"isbn,omitempty" yaml:"isbn,omitempty"`
}

// DocumentMetadata holds what the document extractor found in a PDF.
type DocumentMetadata struct {
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Authors string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
	Year    string `json:"year,omitempty" yaml:"year,omitempty"`
	DOI     string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Text is the raw text the extraction strategy produced.
	Text string `json:"-" yaml:"-"`

	// UsedOCR reports whether the OCR fallback produced the text.
	UsedOCR bool `json:"used_ocr" yaml:"used_ocr"`
}
