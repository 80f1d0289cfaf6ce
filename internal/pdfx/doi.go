// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfx

import (
	"regexp"
	"strings"
)

// doiPatterns match the forms DOIs take in article front matter, most
// explicit first.
var doiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)doi:?\s*(10\.\d{4,9}/[^\s"'<>]+)`),
	regexp.MustCompile(`https?://doi\.org/(10\.\d{4,9}/[^\s"'<>]+)`),
	regexp.MustCompile(`(?:^|\s|[^\w.])(10\.\d{4,9}/[^\s"'<>]+)`),
	regexp.MustCompile(`doi\.org/(10\.\d{4,9}/[^\s"'<>]+)`),
}

// trailingJunk strips punctuation that trails a DOI captured at a sentence
// or line boundary.
var trailingJunk = regexp.MustCompile(`[^a-zA-Z0-9]+$`)

// FindDOI returns the first DOI found in text, or "" when none is present.
func FindDOI(text string) string {
	for _, p := range doiPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		doi := m[1]
		if idx := strings.Index(doi, "doi.org/"); idx >= 0 {
			doi = doi[idx+len("doi.org/"):]
		}
		return sanitizeDOI(doi)
	}
	return ""
}

func sanitizeDOI(doi string) string {
	return trailingJunk.ReplaceAllString(strings.TrimSpace(doi), "")
}
