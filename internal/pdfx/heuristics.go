// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfx

import (
	"regexp"
	"strings"
	"unicode"
)

// blacklistPatterns reject lines that are headers, footers, copyright
// notices, or other front-matter noise rather than titles or author lines.
var blacklistPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)downloaded from`),
	regexp.MustCompile(`(?i)all rights reserved`),
	regexp.MustCompile(`(?i)copyright`),
	regexp.MustCompile(`(?i)reproduced with permission`),
	regexp.MustCompile(`(?i)used with permission`),
	regexp.MustCompile(`©`),
	regexp.MustCompile(`(?i)page \d+ of \d+`),
	regexp.MustCompile(`(?i)\d+\s*\|\s*page`),
	regexp.MustCompile(`(?i)http`),
	regexp.MustCompile(`(?i)www\.`),
	regexp.MustCompile(`@`),
	regexp.MustCompile(`(?i)volume \d+`),
	regexp.MustCompile(`(?i)issue \d+`),
	regexp.MustCompile(`(?i)doi:`),
	regexp.MustCompile(`(?i)isbn`),
	regexp.MustCompile(`(?i)issn`),
	regexp.MustCompile(`(?i)\d{4} by`),
	regexp.MustCompile(`Elsevier|Springer|Wiley|SAGE|IEEE|Oxford University Press|Cambridge University Press`),
}

var (
	authorNamePattern = regexp.MustCompile(`[A-Z][a-z]+ [A-Z][a-z]+`)
	journalPattern    = regexp.MustCompile(`(?i)(Journal of|Proceedings of|Transactions of|Review of).*`)
	digitStart        = regexp.MustCompile(`^\d`)
)

// metadataFromText derives (title, authors, journal) from extracted text.
// All three are best-effort heuristics; empty strings mean "not found".
func metadataFromText(text string) (title, authors, journal string) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 3 {
			lines = append(lines, line)
		}
	}

	var filtered []string
	for _, line := range lines {
		if blacklisted(line) {
			continue
		}
		filtered = append(filtered, line)
	}

	title = extractTitle(filtered)
	authors = extractAuthors(lines, title)
	journal = extractJournal(lines)
	return title, authors, journal
}

func blacklisted(line string) bool {
	for _, p := range blacklistPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// extractTitle looks at the first 30 candidate lines and prefers all-caps
// lines (common for academic titles), then the earliest title-cased line.
func extractTitle(filtered []string) string {
	limit := len(filtered)
	if limit > 30 {
		limit = 30
	}

	var candidates []string
	for _, line := range filtered[:limit] {
		if len(line) < 10 || len(line) >= 200 || digitStart.MatchString(line) {
			continue
		}
		if isAllUpper(line) || countUpper(line) >= 2 {
			candidates = append(candidates, line)
		}
	}

	for _, c := range candidates {
		if isAllUpper(c) {
			return c
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

// extractAuthors scans the lines directly below the title for a line
// containing capitalized name pairs.
func extractAuthors(lines []string, title string) string {
	if title == "" {
		return ""
	}

	titleIdx := -1
	for i, line := range lines {
		if strings.Contains(line, title) {
			titleIdx = i
			break
		}
	}
	if titleIdx < 0 {
		return ""
	}

	end := titleIdx + 10
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[titleIdx+1 : end] {
		if authorNamePattern.MatchString(line) && !isAllUpper(line) && !blacklisted(line) {
			return line
		}
	}
	return ""
}

func extractJournal(lines []string) string {
	for _, line := range lines {
		if m := journalPattern.FindString(line); m != "" {
			return m
		}
	}
	return ""
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

func countUpper(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsUpper(r) {
			n++
		}
	}
	return n
}
