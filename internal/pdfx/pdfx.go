// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfx extracts text and bibliographic metadata from PDF files.
// Text extraction runs through an ordered list of strategies: plain text
// extraction first, then an OCR fallback for scanned documents when the OCR
// binaries are available. Metadata (DOI, title, authors, journal) is derived
// from the extracted text with pattern heuristics.
package pdfx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/pdfmeta/pkg/types"
)

// minTextLength is the threshold below which extracted text is considered
// insufficient and the OCR fallback is tried.
const minTextLength = 100

// NotFoundError indicates the PDF file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("PDF file not found: %s", e.Path)
}

// ReadError indicates the PDF could not be read by any strategy.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read PDF %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ErrOCRUnavailable is returned by the OCR strategy when the required
// binaries are not on PATH.
var ErrOCRUnavailable = errors.New("OCR tools (pdftoppm, tesseract) not available")

// TextExtractor is one strategy for pulling text out of a PDF.
type TextExtractor interface {
	Name() string
	Text(path string, pages int) (string, error)
}

// Extractor derives document metadata from PDFs. Strategies are tried in
// order; the OCR strategy is appended only when enabled and available.
type Extractor struct {
	text    TextExtractor
	ocr     TextExtractor
	pages   int
	verbose bool
	w       io.Writer
}

// NewExtractor builds an extractor per cfg. OCR availability is checked once
// at construction; when the binaries are missing the fallback is silently
// absent and scanned documents yield empty text.
func NewExtractor(cfg types.ExtractionConfig, verbose bool, w io.Writer) *Extractor {
	pages := cfg.OCRPages
	if pages <= 0 {
		pages = 1
	}
	e := &Extractor{
		text:    &textStrategy{},
		pages:   pages,
		verbose: verbose,
		w:       w,
	}
	if cfg.UseOCR {
		if ocr, err := newOCRStrategy(); err == nil {
			e.ocr = ocr
		} else if verbose {
			fmt.Fprintf(w, "  warning: OCR requested but unavailable: %v\n", err)
		}
	}
	return e
}

// Extract reads the PDF at path and returns the metadata found in it. The
// first page's text is enough for DOI and title heuristics; OCR is attempted
// only when plain extraction yields fewer than minTextLength characters.
func (e *Extractor) Extract(path string) (types.DocumentMetadata, error) {
	if _, err := os.Stat(path); err != nil {
		return types.DocumentMetadata{}, &NotFoundError{Path: path}
	}

	var meta types.DocumentMetadata

	text, textErr := e.text.Text(path, e.pages)
	if len(strings.TrimSpace(text)) < minTextLength && e.ocr != nil {
		if e.verbose {
			fmt.Fprintf(e.w, "  little or no extractable text, using OCR\n")
		}
		if ocrText, err := e.ocr.Text(path, e.pages); err == nil && ocrText != "" {
			text = ocrText
			meta.UsedOCR = true
			textErr = nil
		}
	}
	if text == "" && textErr != nil {
		return types.DocumentMetadata{}, &ReadError{Path: path, Err: textErr}
	}

	meta.Text = text
	meta.DOI = FindDOI(text)
	meta.Title, meta.Authors, meta.Journal = metadataFromText(text)
	return meta, nil
}

// textStrategy extracts embedded text with ledongthuc/pdf.
type textStrategy struct{}

func (s *textStrategy) Name() string { return "text" }

func (s *textStrategy) Text(path string, pages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return "", fmt.Errorf("PDF has no pages")
	}
	if pages > r.NumPage() {
		pages = r.NumPage()
	}

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
