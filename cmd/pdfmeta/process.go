package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfmeta/internal/crossref"
	"github.com/pdiddy/pdfmeta/internal/history"
	"github.com/pdiddy/pdfmeta/internal/meta"
	"github.com/pdiddy/pdfmeta/internal/pdfx"
	"github.com/pdiddy/pdfmeta/internal/process"
	"github.com/pdiddy/pdfmeta/internal/sessionlog"
	"github.com/pdiddy/pdfmeta/pkg/types"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultDelay    = 1 * time.Second
	defaultRetries  = 3
	defaultOCRPages = 3
)

var processCmd = &cobra.Command{
	Use:   "process [files or directories...]",
	Short: "Enrich PDF files with Crossref metadata",
	Long: `Process extracts identifying text from each PDF, searches Crossref for
the matching record, and writes the confirmed metadata into the file.
Matched files are renamed to a citation-style filename unless --no-rename
is given.

Interactive mode (the default) presents ranked candidates for review.
Batch mode (--batch) accepts the top candidate automatically when its
confidence is high enough and skips the file otherwise.

Crossref asks politely for a contact email; provide one with --email,
the crossref.email config key, or the CROSSREF_EMAIL environment variable.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().Bool("batch", false, "no prompts: auto-accept high-confidence matches, skip the rest")
	processCmd.Flags().BoolP("recursive", "r", false, "descend into subdirectories")
	processCmd.Flags().Bool("no-rename", false, "update metadata but keep original filenames")
	processCmd.Flags().Bool("backup", false, "keep a .bak copy of each file before modifying it")
	processCmd.Flags().Bool("sidecar", false, "write a YAML metadata sidecar next to each enriched PDF")
	processCmd.Flags().Bool("no-ocr", false, "disable the OCR fallback for scanned PDFs")
	processCmd.Flags().Int("ocr-pages", defaultOCRPages, "number of pages to OCR per file")
	processCmd.Flags().Int("retries", defaultRetries, "total attempts per Crossref request")
	processCmd.Flags().Duration("timeout", defaultTimeout, "Crossref request timeout")
	processCmd.Flags().Duration("delay", defaultDelay, "pause between consecutive files")
	processCmd.Flags().String("log", "", "session log path (default: pdfmeta_log_<timestamp>.json)")
	processCmd.Flags().String("email", "", "contact email for the Crossref polite pool")
	processCmd.Flags().String("history", "", "SQLite history database; previously enriched files are skipped")
	processCmd.Flags().Bool("force", false, "reprocess files already recorded in the history database")
	processCmd.Flags().BoolP("verbose", "v", false, "show extraction and scoring detail")
	processCmd.Flags().BoolP("quiet", "q", false, "suppress per-file output (implies --batch behavior at prompts)")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more PDF files, directories, or glob patterns")
	}

	flagEmail, _ := cmd.Flags().GetString("email")
	contact := resolveEmail(flagEmail)
	if contact == "" {
		return fmt.Errorf("no contact email configured: set --email, the crossref.email config key, or CROSSREF_EMAIL (required for Crossref polite-pool access)")
	}

	recursive, _ := cmd.Flags().GetBool("recursive")
	files, err := collectPDFFiles(args, recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF files found")
	}

	batch, _ := cmd.Flags().GetBool("batch")
	noRename, _ := cmd.Flags().GetBool("no-rename")
	backup, _ := cmd.Flags().GetBool("backup")
	sidecar, _ := cmd.Flags().GetBool("sidecar")
	noOCR, _ := cmd.Flags().GetBool("no-ocr")
	ocrPages, _ := cmd.Flags().GetInt("ocr-pages")
	retries, _ := cmd.Flags().GetInt("retries")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	delay, _ := cmd.Flags().GetDuration("delay")
	logPath, _ := cmd.Flags().GetString("log")
	historyPath, _ := cmd.Flags().GetString("history")
	force, _ := cmd.Flags().GetBool("force")
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	client := crossref.NewClient(types.CrossrefConfig{
		HTTPConfig: types.HTTPConfig{Timeout: timeout},
		Email:      contact,
		Retries:    retries,
	})

	extractor := pdfx.NewExtractor(types.ExtractionConfig{
		UseOCR:   !noOCR,
		OCRPages: ocrPages,
	}, verbose, os.Stdout)

	updater := &meta.Updater{KeepBackup: backup}

	log, err := sessionlog.New(logPath, map[string]any{
		"batch_mode": batch,
		"rename":     !noRename,
		"use_ocr":    !noOCR,
		"sidecar":    sidecar,
	})
	if err != nil {
		return fmt.Errorf("opening session log: %w", err)
	}

	var hist process.History
	if historyPath != "" {
		store, err := history.Open(historyPath)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer store.Close()
		hist = store
	}

	engine := &process.Engine{
		Extractor: extractor,
		Catalog:   client,
		Writer:    updater,
		Rename:    meta.Rename,
		Log:       log,
		History:   hist,
		UI: &process.UI{
			In:      os.Stdin,
			Out:     os.Stdout,
			Verbose: verbose,
			Quiet:   quiet,
		},
		Config: types.ProcessConfig{
			BatchMode:      batch || quiet,
			Rename:         !noRename,
			Sidecar:        sidecar,
			Force:          force,
			InterFileDelay: delay,
			Verbose:        verbose,
			Quiet:          quiet,
		},
	}

	stats := engine.Run(cmd.Context(), files)
	if stats.Failed > 0 {
		return fmt.Errorf("%d file(s) failed processing", stats.Failed)
	}
	return nil
}

// resolveEmail picks the Crossref contact email: the --email flag, then the
// crossref.email config key, then the CROSSREF_EMAIL environment variable.
func resolveEmail(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := viper.GetString("crossref.email"); v != "" {
		return v
	}
	return os.Getenv("CROSSREF_EMAIL")
}

// collectPDFFiles expands files, directories, and glob patterns into a
// sorted, deduplicated list of PDF paths.
func collectPDFFiles(args []string, recursive bool) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !isPDF(path) || seen[path] {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			if err := addDir(arg, recursive, add); err != nil {
				return nil, err
			}
		case err == nil:
			if !isPDF(arg) {
				return nil, fmt.Errorf("not a PDF file: %s", arg)
			}
			add(arg)
		default:
			matches, globErr := filepath.Glob(arg)
			if globErr != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", arg, globErr)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no such file or directory: %s", arg)
			}
			for _, m := range matches {
				add(m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func addDir(dir string, recursive bool, add func(string)) error {
	if recursive {
		return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				add(path)
			}
			return nil
		})
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			add(filepath.Join(dir, entry.Name()))
		}
	}
	return nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
