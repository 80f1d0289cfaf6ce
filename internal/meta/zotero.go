// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package meta

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfmeta/pkg/types"
)

const (
	maxTitleLen    = 100
	maxFilenameLen = 240
)

var (
	authorSplit   = regexp.MustCompile(`[;,]`)
	unsafeChars   = regexp.MustCompile(`[<>:"/\\|?*'(),;]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// ZoteroFilename builds a "Author - Year - Title.pdf" filename from md.
// Two authors become "A & B", three or more "A et al."; the title is
// truncated at 100 characters and the whole name at 240. A leading
// underscore marks names built from incomplete metadata.
func ZoteroFilename(md types.MetadataUpdate, originalPath string) string {
	incomplete := false

	var authors []string
	for _, a := range authorSplit.Split(md.Authors, -1) {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		// "Firstname Lastname" collapses to the last name.
		if fields := strings.Fields(a); len(fields) > 1 {
			a = fields[len(fields)-1]
		}
		authors = append(authors, a)
		if len(authors) == 3 {
			break
		}
	}
	if len(authors) == 0 {
		authors = []string{"Unknown"}
		incomplete = true
	}

	var authorPart string
	switch len(authors) {
	case 1:
		authorPart = authors[0]
	case 2:
		authorPart = authors[0] + " & " + authors[1]
	default:
		authorPart = authors[0] + " et al."
	}

	year := md.Year
	if year == "" {
		year = "Unknown"
		incomplete = true
	}

	title := md.Title
	if title == "" {
		base := filepath.Base(originalPath)
		title = strings.TrimSuffix(base, filepath.Ext(base))
		incomplete = true
	}
	// Truncate on rune boundaries; titles are not always ASCII.
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen-3]) + "..."
	}

	name := fmt.Sprintf("%s - %s - %s", authorPart, year, title)
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, "&", "and")
	name = strings.TrimSpace(whitespaceRun.ReplaceAllString(name, " "))

	name += ".pdf"
	if runes := []rune(name); len(runes) > maxFilenameLen {
		name = string(runes[:maxFilenameLen-4]) + ".pdf"
	}
	if incomplete {
		name = "_" + name
	}
	return name
}

// WriteSidecar writes a YAML metadata record next to the PDF, named after
// the PDF with a .yaml extension.
func WriteSidecar(pdfPath string, md types.MetadataUpdate) error {
	data, err := yaml.Marshal(md)
	if err != nil {
		return fmt.Errorf("marshaling sidecar metadata: %w", err)
	}
	sidecarPath := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".yaml"
	if err := os.WriteFile(sidecarPath, data, 0o644); err != nil {
		return fmt.Errorf("writing sidecar %s: %w", sidecarPath, err)
	}
	return nil
}
