// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filename extracts bibliographic hints from academic PDF filenames.
// Filenames in the wild range from fully structured Zotero exports
// ("Smith - 2020 - Machine Learning.pdf") down to a bare year buried in
// noise; each recognized shape carries a confidence reflecting how
// structurally specific it is.
package filename

import (
	"regexp"
	"strconv"
	"strings"
)

// Hints holds metadata hints parsed from a filename. Confidence reflects the
// structural specificity of the matched pattern, not a probability that the
// hints are correct.
type Hints struct {
	Author     string
	Year       string
	Title      string
	Confidence float64
}

// pattern pairs a filename shape with its confidence and capture-group
// indices (0 means the field is not captured by this shape).
type pattern struct {
	re         *regexp.Regexp
	confidence float64
	author     int
	year       int
	title      int
}

// patterns is ordered most structurally specific first; Parse stops at the
// first shape whose captured year is plausible.
var patterns = []pattern{
	// Zotero export: "Author - Year - Title"
	{regexp.MustCompile(`^(.+?)\s*-\s*(\d{4})\s*-\s*(.+)$`), 0.90, 1, 2, 3},
	// "Author (Year) Title" or "Author (Year)"
	{regexp.MustCompile(`^([A-Za-z\s&]+)\s*\((\d{4})\)\s*(.*)$`), 0.85, 1, 2, 3},
	// "Author Year Title" with spaces
	{regexp.MustCompile(`^([A-Za-z\s&]+?)\s+(\d{4})\s+(.+)$`), 0.75, 1, 2, 3},
	// "Author_Year_Title"
	{regexp.MustCompile(`^([A-Za-z]+)_(\d{4})_(.+)$`), 0.75, 1, 2, 3},
	// "Author_Year"
	{regexp.MustCompile(`^([A-Za-z]+)_(\d{4})$`), 0.60, 1, 2, 0},
	// "AuthorYEAR" concatenated
	{regexp.MustCompile(`^([A-Za-z]+)(\d{4})$`), 0.60, 1, 2, 0},
	// "Author Year" with space
	{regexp.MustCompile(`^([A-Za-z\s&]+)\s+(\d{4})$`), 0.65, 1, 2, 0},
	// "Year_Author" reversed
	{regexp.MustCompile(`^(\d{4})_([A-Za-z]+)$`), 0.55, 2, 1, 0},
	// Bare 4-digit year anywhere
	{regexp.MustCompile(`^.*?(\d{4}).*?$`), 0.30, 0, 1, 0},
}

// Parse extracts author, year, and title hints from a PDF filename. It is
// total: when no shape matches (or every matched year is implausible) it
// returns a zero-confidence result with all fields empty.
func Parse(name string) Hints {
	clean := name
	if strings.HasSuffix(strings.ToLower(clean), ".pdf") {
		clean = clean[:len(clean)-4]
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(clean)
		if m == nil {
			continue
		}

		confidence := p.confidence

		var author, year, title string
		if p.author > 0 {
			author = strings.TrimSpace(m[p.author])
		}
		if p.year > 0 {
			year = strings.TrimSpace(m[p.year])
		}
		if p.title > 0 {
			title = strings.TrimSpace(m[p.title])
			if title == "" {
				// Title expected but missing lowers confidence.
				confidence *= 0.9
			}
		}

		// Multi-author separators ("&", "and", "et al") are kept verbatim;
		// only internal whitespace runs are collapsed.
		if author != "" {
			author = strings.Join(strings.Fields(author), " ")
		}

		// A year outside [1800, 2100] rejects this shape, not the whole parse.
		if year != "" {
			y, err := strconv.Atoi(year)
			if err != nil || y < 1800 || y > 2100 {
				continue
			}
		}

		return Hints{
			Author:     author,
			Year:       year,
			Title:      title,
			Confidence: confidence,
		}
	}

	return Hints{}
}
