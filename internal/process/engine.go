// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package process drives PDF files through the metadata enrichment pipeline:
// filename hints, document extraction, catalog search, match selection
// (batch auto-accept or interactive), metadata write, rename, and logging.
// Every file ends in exactly one terminal outcome.
package process

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/pdfmeta/internal/crossref"
	"github.com/pdiddy/pdfmeta/internal/filename"
	"github.com/pdiddy/pdfmeta/internal/meta"
	"github.com/pdiddy/pdfmeta/internal/pdfx"
	"github.com/pdiddy/pdfmeta/pkg/types"
)

const (
	// autoAcceptThreshold is the minimum top-candidate score batch mode accepts.
	autoAcceptThreshold = 0.80

	// maxSearchResults is how many ranked candidates a search returns.
	maxSearchResults = 5
)

// ErrQuit signals a user-initiated abort of the remaining file queue. The
// session log is still flushed before the run terminates.
var ErrQuit = errors.New("user quit")

// Status is the terminal outcome of one file.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// RunStats accumulates terminal outcomes across a run.
type RunStats struct {
	Completed int
	Skipped   int
	Failed    int
}

// Total returns the number of files that reached a terminal outcome.
func (s RunStats) Total() int {
	return s.Completed + s.Skipped + s.Failed
}

// Catalog searches the bibliographic catalog and fetches records by DOI.
type Catalog interface {
	Search(ctx context.Context, title, author, year, journal string, maxResults int) ([]types.Match, error)
	FetchByDOI(ctx context.Context, doi string) (types.Match, error)
}

// Extractor pulls text and metadata out of a PDF.
type Extractor interface {
	Extract(path string) (types.DocumentMetadata, error)
}

// MetadataWriter writes a metadata payload into a PDF.
type MetadataWriter interface {
	Write(path string, md types.MetadataUpdate, outputPath string) error
}

// RenameFunc renames a file, resolving collisions, and returns the final path.
type RenameFunc func(oldPath, newName, outputDir string) (string, error)

// SessionLog records one entry per terminal outcome.
type SessionLog interface {
	Success(originalPath, newPath, doi string, confidence float64, usedOCR bool)
	Skip(originalPath, reason string)
	Failure(originalPath, errMsg string, attempts int)
	Path() string
	Close() error
}

// History remembers already-enriched files across runs. May be nil.
type History interface {
	Seen(path string) (string, bool, error)
	Record(path, doi string, score float64) error
}

// Engine is the per-file decision state machine.
type Engine struct {
	Extractor Extractor
	Catalog   Catalog
	Writer    MetadataWriter
	Rename    RenameFunc
	Log       SessionLog
	History   History
	UI        *UI
	Config    types.ProcessConfig

	stats RunStats
}

// Stats returns the outcome counters accumulated so far.
func (e *Engine) Stats() RunStats { return e.stats }

// Run processes the files sequentially. A user quit aborts the remaining
// queue; the session log is flushed either way.
func (e *Engine) Run(ctx context.Context, files []string) RunStats {
	total := len(files)
	plural := "s"
	if total == 1 {
		plural = ""
	}
	e.UI.Info("\nProcessing %d PDF file%s...\n", total, plural)

	for i, path := range files {
		if i > 0 && e.Config.InterFileDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(e.Config.InterFileDelay):
			}
		}
		if ctx.Err() != nil {
			e.UI.Info("\nProcessing interrupted\n")
			break
		}

		status, err := e.processOne(ctx, path)
		if err != nil {
			// User quit: the aborted file gets no outcome.
			e.UI.Info("\nProcessing interrupted by user\n")
			break
		}
		e.tally(status)
	}

	if err := e.Log.Close(); err != nil {
		fmt.Fprintf(e.UI.Out, "warning: %v\n", err)
	}
	e.UI.PrintSummary(total, e.stats.Completed, e.stats.Skipped, e.stats.Failed, e.Log.Path())
	return e.stats
}

func (e *Engine) tally(status Status) {
	switch status {
	case StatusCompleted:
		e.stats.Completed++
	case StatusSkipped:
		e.stats.Skipped++
	case StatusFailed:
		e.stats.Failed++
	}
}

// processOne drives a single file to its terminal outcome. The returned
// error is ErrQuit when the user aborted the run.
func (e *Engine) processOne(ctx context.Context, path string) (Status, error) {
	name := filepath.Base(path)
	divider := strings.Repeat("=", 60)
	e.UI.Info("\n%s\nProcessing: %s\n%s\n", divider, name, divider)

	if e.History != nil && !e.Config.Force {
		if doi, seen, err := e.History.Seen(path); err == nil && seen {
			e.UI.Info("Already processed (DOI %s)\n", doi)
			e.Log.Skip(path, "already processed: "+doi)
			return StatusSkipped, nil
		}
	}

	hints := filename.Parse(name)
	e.UI.Verbosef("Filename hints: author=%q year=%q title=%q confidence=%.2f\n",
		hints.Author, hints.Year, hints.Title, hints.Confidence)

	// Interactive retry restarts the file from extraction.
	for {
		status, retry, err := e.attempt(ctx, path, name, hints)
		if err != nil || !retry {
			return status, err
		}
		e.UI.Info("Retrying %s...\n", name)
	}
}

// attempt runs one pass of the per-file pipeline. retry is true when the
// user asked to restart this file from extraction.
func (e *Engine) attempt(ctx context.Context, path, name string, hints filename.Hints) (status Status, retry bool, err error) {
	e.UI.Info("Extracting PDF metadata...\n")
	doc, extractErr := e.Extractor.Extract(path)
	if extractErr != nil {
		return e.extractionFailure(path, name, extractErr)
	}
	e.UI.Verbosef("Extracted DOI: %s\nExtracted title: %s\nUsed OCR: %v\n",
		orNotFound(doc.DOI), orNotFound(doc.Title), doc.UsedOCR)

	// Document-extracted fields outrank filename hints field by field.
	searchTitle := firstNonEmpty(doc.Title, hints.Title)
	searchAuthor := firstNonEmpty(doc.Authors, hints.Author)
	searchYear := firstNonEmpty(doc.Year, hints.Year)

	e.UI.Info("Searching Crossref API...\n")
	matches, searchErr := e.findMatches(ctx, doc, searchTitle, searchAuthor, searchYear)
	if searchErr != nil {
		var connErr *crossref.ConnectionError
		return e.recoverableFailure(path, name, searchErr, errors.As(searchErr, &connErr))
	}

	if len(matches) == 0 {
		e.UI.Info("No matches found in Crossref\n")
		e.Log.Skip(path, "no Crossref matches found")
		return StatusSkipped, false, nil
	}

	var selected types.Match
	if e.Config.BatchMode {
		if matches[0].Score < autoAcceptThreshold {
			e.UI.Info("Skipped - confidence too low (%.2f < %.2f)\n", matches[0].Score, autoAcceptThreshold)
			e.Log.Skip(path, fmt.Sprintf("confidence below threshold: %.2f", matches[0].Score))
			return StatusSkipped, false, nil
		}
		selected = matches[0]
		e.UI.Info("Auto-selected (score: %.2f)\n", selected.Score)
	} else {
		choice := e.UI.SelectMatch(matches, name, hints)
		switch choice.Kind {
		case ChoiceQuit:
			return StatusSkipped, false, ErrQuit
		case ChoiceSkip:
			e.Log.Skip(path, "user skipped")
			return StatusSkipped, false, nil
		case ChoiceRetry:
			return StatusSkipped, true, nil
		case ChoiceManualDOI:
			m, fetchErr := e.Catalog.FetchByDOI(ctx, choice.DOI)
			if fetchErr != nil {
				e.UI.Info("Failed to fetch metadata for DOI: %v\n", fetchErr)
				e.Log.Failure(path, "invalid DOI: "+choice.DOI, 1)
				return StatusFailed, false, nil
			}
			selected = m
		case ChoiceSelect:
			selected = matches[choice.Index]
		}
	}

	md := buildUpdate(selected)
	newName := name
	if e.Config.Rename {
		newName = meta.ZoteroFilename(md, path)
	}

	if !e.Config.BatchMode {
		switch e.UI.ConfirmMetadata(name, md, newName) {
		case ConfirmQuit:
			return StatusSkipped, false, ErrQuit
		case ConfirmSkip:
			e.Log.Skip(path, "user declined metadata")
			return StatusSkipped, false, nil
		}
	}

	e.UI.Info("Updating PDF metadata...\n")
	if writeErr := e.Writer.Write(path, md, ""); writeErr != nil {
		return e.recoverableFailure(path, name, writeErr, false)
	}

	newPath := path
	if e.Config.Rename {
		e.UI.Info("Renaming to: %s\n", newName)
		renamed, renameErr := e.Rename(path, newName, "")
		if renameErr != nil {
			return e.recoverableFailure(path, name, renameErr, false)
		}
		newPath = renamed
	}

	if e.Config.Sidecar {
		if sidecarErr := meta.WriteSidecar(newPath, md); sidecarErr != nil {
			e.UI.Info("warning: %v\n", sidecarErr)
		}
	}

	if e.History != nil {
		if histErr := e.History.Record(newPath, selected.DOI, selected.Score); histErr != nil {
			e.UI.Verbosef("warning: recording history: %v\n", histErr)
		}
	}

	e.Log.Success(path, newPath, selected.DOI, selected.Score, doc.UsedOCR)
	e.UI.Info("Successfully processed\n")
	return StatusCompleted, false, nil
}

// findMatches queries the catalog. A document DOI is fetched directly; on
// failure the engine falls back to a hint search.
func (e *Engine) findMatches(ctx context.Context, doc types.DocumentMetadata, title, author, year string) ([]types.Match, error) {
	if doc.DOI != "" {
		m, err := e.Catalog.FetchByDOI(ctx, doc.DOI)
		if err == nil {
			return []types.Match{m}, nil
		}
		e.UI.Verbosef("DOI lookup failed: %v\n", err)
	}
	return e.Catalog.Search(ctx, title, author, year, doc.Journal, maxSearchResults)
}

// extractionFailure converts an extraction error into a terminal outcome.
// Missing files fail without prompting; other read errors offer skip/quit
// in interactive mode.
func (e *Engine) extractionFailure(path, name string, extractErr error) (Status, bool, error) {
	var notFound *pdfx.NotFoundError
	if errors.As(extractErr, &notFound) || e.Config.BatchMode {
		e.UI.Info("Error: %v\n", extractErr)
		e.Log.Failure(path, extractErr.Error(), 1)
		return StatusFailed, false, nil
	}
	if e.UI.HandleError(name, extractErr, false) == ErrorQuit {
		return StatusFailed, false, ErrQuit
	}
	e.Log.Failure(path, extractErr.Error(), 1)
	return StatusFailed, false, nil
}

// recoverableFailure converts a processing error into a terminal outcome,
// or a retry when the user asks for one. Only transient errors offer retry.
func (e *Engine) recoverableFailure(path, name string, procErr error, retryable bool) (Status, bool, error) {
	if e.Config.BatchMode {
		e.UI.Info("Error: %v\n", procErr)
		e.Log.Failure(path, procErr.Error(), 1)
		return StatusFailed, false, nil
	}
	switch e.UI.HandleError(name, procErr, retryable) {
	case ErrorRetry:
		return StatusFailed, true, nil
	case ErrorQuit:
		return StatusFailed, false, ErrQuit
	default:
		e.Log.Failure(path, procErr.Error(), 1)
		return StatusFailed, false, nil
	}
}

// buildUpdate converts a chosen match into the metadata payload to write.
func buildUpdate(m types.Match) types.MetadataUpdate {
	return types.MetadataUpdate{
		Title:   m.Title,
		Authors: strings.Join(m.Authors, "; "),
		Year:    m.Year,
		Journal: m.Journal,
		DOI:     m.DOI,
		ISBN:    m.ISBN,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func orNotFound(s string) string {
	if s == "" {
		return "not found"
	}
	return s
}
