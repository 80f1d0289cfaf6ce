// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfx

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ocrStrategy rasterizes pages with pdftoppm and runs tesseract on each
// image. Both binaries must be on PATH; newOCRStrategy checks once.
type ocrStrategy struct {
	pdftoppm  string
	tesseract string
}

func newOCRStrategy() (*ocrStrategy, error) {
	pdftoppm, err := exec.LookPath("pdftoppm")
	if err != nil {
		return nil, ErrOCRUnavailable
	}
	tesseract, err := exec.LookPath("tesseract")
	if err != nil {
		return nil, ErrOCRUnavailable
	}
	return &ocrStrategy{pdftoppm: pdftoppm, tesseract: tesseract}, nil
}

func (s *ocrStrategy) Name() string { return "ocr" }

func (s *ocrStrategy) Text(path string, pages int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "pdfmeta-ocr-*")
	if err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command(s.pdftoppm,
		"-png", "-r", "300",
		"-f", "1", "-l", fmt.Sprintf("%d", pages),
		path, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftoppm: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	images, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(images) == 0 {
		return "", fmt.Errorf("pdftoppm produced no page images")
	}
	sort.Strings(images)

	var b strings.Builder
	for i, img := range images {
		out, err := exec.Command(s.tesseract, img, "stdout").Output()
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "\n--- Page %d ---\n%s", i+1, out)
	}
	return b.String(), nil
}
