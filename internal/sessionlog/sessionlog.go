// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sessionlog records per-file processing results and writes them as
// a JSON session log when closed. The log is append-only: exactly one entry
// per terminal outcome.
package sessionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Result is one per-file log entry.
type Result struct {
	OriginalPath    string  `json:"original_path"`
	Status          string  `json:"status"`
	MatchedDOI      string  `json:"matched_doi,omitempty"`
	Confidence      float64 `json:"confidence,omitempty"`
	NewFilename     string  `json:"new_filename,omitempty"`
	MetadataUpdated bool    `json:"metadata_updated,omitempty"`
	Renamed         bool    `json:"renamed,omitempty"`
	UsedOCR         bool    `json:"used_ocr,omitempty"`
	Reason          string  `json:"reason,omitempty"`
	Error           string  `json:"error,omitempty"`
	Attempts        int     `json:"attempts,omitempty"`
	Timestamp       string  `json:"timestamp"`
}

type session struct {
	StartTime       string         `json:"start_time"`
	EndTime         string         `json:"end_time"`
	DurationSeconds float64        `json:"duration_seconds"`
	TotalFiles      int            `json:"total_files"`
	Successful      int            `json:"successful"`
	Skipped         int            `json:"skipped"`
	Failed          int            `json:"failed"`
	Settings        map[string]any `json:"settings"`
}

type logFile struct {
	Session session  `json:"session"`
	Results []Result `json:"results"`
}

// Logger accumulates results in memory and flushes them on Close.
type Logger struct {
	path     string
	start    time.Time
	settings map[string]any
	results  []Result
}

// New creates a session logger. An empty path auto-generates a timestamped
// filename in the working directory; parent directories are created.
func New(path string, settings map[string]any) (*Logger, error) {
	start := time.Now()
	if path == "" {
		path = fmt.Sprintf("pdfmeta_log_%s.json", start.Format("20060102_150405"))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
		}
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return &Logger{path: path, start: start, settings: settings}, nil
}

// Path returns the log file path.
func (l *Logger) Path() string { return l.path }

// Success records a completed file.
func (l *Logger) Success(originalPath, newPath, doi string, confidence float64, usedOCR bool) {
	l.results = append(l.results, Result{
		OriginalPath:    originalPath,
		Status:          "success",
		MatchedDOI:      doi,
		Confidence:      confidence,
		NewFilename:     filepath.Base(newPath),
		MetadataUpdated: true,
		Renamed:         originalPath != newPath,
		UsedOCR:         usedOCR,
		Timestamp:       time.Now().Format(time.RFC3339),
	})
}

// Skip records a skipped file with the reason.
func (l *Logger) Skip(originalPath, reason string) {
	l.results = append(l.results, Result{
		OriginalPath: originalPath,
		Status:       "skipped",
		Reason:       reason,
		Timestamp:    time.Now().Format(time.RFC3339),
	})
}

// Failure records a failed file.
func (l *Logger) Failure(originalPath, errMsg string, attempts int) {
	if attempts < 1 {
		attempts = 1
	}
	l.results = append(l.results, Result{
		OriginalPath: originalPath,
		Status:       "failed",
		Error:        errMsg,
		Attempts:     attempts,
		Timestamp:    time.Now().Format(time.RFC3339),
	})
}

// Stats returns the per-status counts.
func (l *Logger) Stats() (successful, skipped, failed int) {
	for _, r := range l.results {
		switch r.Status {
		case "success":
			successful++
		case "skipped":
			skipped++
		case "failed":
			failed++
		}
	}
	return successful, skipped, failed
}

// Close writes the session log to disk. Safe to call after a user abort;
// results recorded so far are flushed.
func (l *Logger) Close() error {
	end := time.Now()
	successful, skipped, failed := l.Stats()

	out := logFile{
		Session: session{
			StartTime:       l.start.Format(time.RFC3339),
			EndTime:         end.Format(time.RFC3339),
			DurationSeconds: end.Sub(l.start).Seconds(),
			TotalFiles:      len(l.results),
			Successful:      successful,
			Skipped:         skipped,
			Failed:          failed,
			Settings:        l.settings,
		},
		Results: l.results,
	}
	if out.Results == nil {
		out.Results = []Result{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session log: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("writing session log %s: %w", l.path, err)
	}
	return nil
}
