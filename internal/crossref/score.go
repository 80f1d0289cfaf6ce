// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crossref

import (
	"strconv"
	"strings"
	"unicode"
)

// Scoring weights. They sum to 1.0; the total is capped at 1.0.
const (
	weightTitle   = 0.5
	weightYear    = 0.2
	weightAuthor  = 0.2
	weightJournal = 0.1
)

// stopwords are dropped from titles before similarity comparison.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "with": {}, "from": {}, "by": {}, "and": {},
	"or": {}, "but": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "have": {}, "has": {},
	"had": {}, "there": {},
}

// scoreItem computes the weighted match score of a catalog record against
// the query fields. Empty query fields contribute nothing.
func scoreItem(item workItem, queryTitle, queryAuthor, queryYear, queryJournal string) float64 {
	score := 0.0

	if queryTitle != "" && len(item.Title) > 0 && item.Title[0] != "" {
		score += titleSimilarity(queryTitle, item.Title[0]) * weightTitle
	}

	if queryYear != "" {
		if itemYr := itemYear(item); itemYr != "" {
			switch {
			case itemYr == queryYear:
				score += weightYear
			case yearDelta(itemYr, queryYear) == 1:
				score += weightYear / 2
			}
		}
	}

	if queryAuthor != "" {
		queryLower := strings.ToLower(queryAuthor)
		for _, a := range item.Author {
			if a.Family == "" {
				continue
			}
			family := strings.ToLower(a.Family)
			if strings.Contains(queryLower, family) || strings.Contains(family, queryLower) {
				score += weightAuthor
				break
			}
		}
	}

	if queryJournal != "" && len(item.ContainerTitle) > 0 && item.ContainerTitle[0] != "" {
		score += titleSimilarity(queryJournal, item.ContainerTitle[0]) * weightJournal
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// titleSimilarity computes a fuzzy similarity in [0,1] between two titles:
// both are normalized (lowercased, punctuation stripped, stopwords and tokens
// of length <= 2 dropped), then compared with a character-sequence ratio.
func titleSimilarity(a, b string) float64 {
	na := normalizeTitle(a)
	nb := normalizeTitle(b)
	if na == "" || nb == "" {
		return 0.0
	}
	return sequenceRatio(na, nb)
}

// normalizeTitle lowercases, replaces punctuation with spaces, and drops
// stopwords and short tokens.
func normalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	var kept []string
	for _, w := range strings.Fields(b.String()) {
		if _, stop := stopwords[w]; stop {
			continue
		}
		if len(w) <= 2 {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// sequenceRatio is a longest-common-subsequence similarity ratio:
// 2×LCS(a,b) / (len(a)+len(b)), over runes, in [0,1].
func sequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	// Single-row LCS dynamic program.
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}

	lcs := prev[len(rb)]
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

// yearDelta returns the absolute difference between two 4-digit years, or -1
// when either fails to parse.
func yearDelta(a, b string) int {
	ya, errA := strconv.Atoi(a)
	yb, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return -1
	}
	d := ya - yb
	if d < 0 {
		d = -d
	}
	return d
}
