// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package meta writes bibliographic metadata into PDF files and renames them
// to the "Author - Year - Title" form. Writes go through pdfcpu's document
// properties API and preserve the file's modification time.
package meta

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pdiddy/pdfmeta/pkg/types"
)

// UpdateError indicates the PDF metadata write failed.
type UpdateError struct {
	Path string
	Err  error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("metadata update failed for %s: %v", e.Path, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// FileOpError indicates a rename or copy operation failed.
type FileOpError struct {
	Path string
	Err  error
}

func (e *FileOpError) Error() string {
	return fmt.Sprintf("file operation failed for %s: %v", e.Path, e.Err)
}

func (e *FileOpError) Unwrap() error { return e.Err }

// Updater writes metadata into PDFs.
type Updater struct {
	// KeepBackup keeps a .bak copy of the original before an in-place update.
	KeepBackup bool
}

// Write rewrites the PDF's document information dictionary with md. When
// outputPath is empty the update is in-place via a temp file. The file's
// modification time is preserved across the rewrite.
func (u *Updater) Write(path string, md types.MetadataUpdate, outputPath string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &UpdateError{Path: path, Err: err}
	}
	modTime := info.ModTime()

	inPlace := outputPath == "" || outputPath == path
	if inPlace {
		outputPath = path
	}

	if u.KeepBackup && inPlace {
		if err := copyFile(path, path+".bak"); err != nil {
			return &UpdateError{Path: path, Err: fmt.Errorf("creating backup: %w", err)}
		}
	}

	target := outputPath
	if inPlace {
		target = outputPath + ".tmp"
	}

	if err := api.AddPropertiesFile(path, target, properties(md), nil); err != nil {
		if inPlace {
			os.Remove(target)
		}
		return &UpdateError{Path: path, Err: err}
	}

	if inPlace {
		if err := os.Rename(target, outputPath); err != nil {
			os.Remove(target)
			return &UpdateError{Path: path, Err: err}
		}
	}

	// Keep the original modification time; the write is a metadata fix,
	// not new content.
	if err := os.Chtimes(outputPath, modTime, modTime); err != nil {
		return &UpdateError{Path: path, Err: err}
	}
	return nil
}

// properties builds the Info dictionary entries for md. Journal and DOI (or
// ISBN) fold into Subject; the DOI or ISBN also lands in Keywords; the year
// becomes a January-1st CreationDate.
func properties(md types.MetadataUpdate) map[string]string {
	props := make(map[string]string)

	if md.Title != "" {
		props["Title"] = md.Title
	}
	if md.Authors != "" {
		props["Author"] = md.Authors
	}
	if md.Year != "" {
		props["CreationDate"] = fmt.Sprintf("D:%s0101000000Z", md.Year)
	}

	var subject []string
	if md.Journal != "" {
		subject = append(subject, md.Journal)
	}
	switch {
	case md.DOI != "":
		subject = append(subject, "DOI: "+md.DOI)
		props["Keywords"] = "DOI: " + md.DOI
	case md.ISBN != "":
		subject = append(subject, "ISBN: "+md.ISBN)
		props["Keywords"] = "ISBN: " + md.ISBN
	}
	if len(subject) > 0 {
		props["Subject"] = strings.Join(subject, " | ")
	}

	return props
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}

// Rename moves the file to newName, resolving collisions by appending
// " (2)", " (3)", … before the extension. outputDir defaults to the file's
// directory and is created when missing. It returns the final path.
func Rename(oldPath, newName, outputDir string) (string, error) {
	if _, err := os.Stat(oldPath); err != nil {
		return "", &FileOpError{Path: oldPath, Err: err}
	}

	targetDir := outputDir
	if targetDir == "" {
		targetDir = filepath.Dir(oldPath)
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", &FileOpError{Path: oldPath, Err: err}
	}

	newPath := filepath.Join(targetDir, newName)
	base := newPath
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for counter := 2; ; counter++ {
		if samePath(newPath, oldPath) {
			return newPath, nil
		}
		if _, err := os.Stat(newPath); os.IsNotExist(err) {
			break
		}
		newPath = fmt.Sprintf("%s (%d)%s", stem, counter, ext)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return "", &FileOpError{Path: oldPath, Err: err}
	}
	return newPath, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
