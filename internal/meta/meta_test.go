// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfmeta/pkg/types"
)

func TestProperties(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		props := properties(types.MetadataUpdate{
			Title:   "Attention Is All You Need",
			Authors: "Ashish Vaswani; Noam Shazeer",
			Year:    "2017",
			Journal: "Advances in Neural Information Processing Systems",
			DOI:     "10.48550/arXiv.1706.03762",
		})

		assert.Equal(t, "Attention Is All You Need", props["Title"])
		assert.Equal(t, "Ashish Vaswani; Noam Shazeer", props["Author"])
		assert.Equal(t, "D:20170101000000Z", props["CreationDate"])
		assert.Equal(t, "Advances in Neural Information Processing Systems | DOI: 10.48550/arXiv.1706.03762", props["Subject"])
		assert.Equal(t, "DOI: 10.48550/arXiv.1706.03762", props["Keywords"])
	})

	t.Run("isbn used when no doi", func(t *testing.T) {
		props := properties(types.MetadataUpdate{
			Title: "Some Book",
			ISBN:  "978-0-00-000000-0",
		})
		assert.Equal(t, "ISBN: 978-0-00-000000-0", props["Subject"])
		assert.Equal(t, "ISBN: 978-0-00-000000-0", props["Keywords"])
	})

	t.Run("empty fields omitted", func(t *testing.T) {
		props := properties(types.MetadataUpdate{Title: "Only Title"})
		assert.Equal(t, map[string]string{"Title": "Only Title"}, props)
	})
}

func TestWrite_MissingFile(t *testing.T) {
	u := &Updater{}
	err := u.Write(filepath.Join(t.TempDir(), "gone.pdf"), types.MetadataUpdate{Title: "X"}, "")

	var updateErr *UpdateError
	require.ErrorAs(t, err, &updateErr)
}

func TestRename(t *testing.T) {
	mkfile := func(t *testing.T, dir, name string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		return path
	}

	t.Run("plain rename", func(t *testing.T) {
		dir := t.TempDir()
		old := mkfile(t, dir, "orig.pdf")

		got, err := Rename(old, "Smith - 2020 - Title.pdf", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "Smith - 2020 - Title.pdf"), got)
		assert.NoFileExists(t, old)
		assert.FileExists(t, got)
	})

	t.Run("collision appends counter", func(t *testing.T) {
		dir := t.TempDir()
		old := mkfile(t, dir, "orig.pdf")
		mkfile(t, dir, "Smith - 2020 - Title.pdf")
		mkfile(t, dir, "Smith - 2020 - Title (2).pdf")

		got, err := Rename(old, "Smith - 2020 - Title.pdf", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "Smith - 2020 - Title (3).pdf"), got)
	})

	t.Run("renaming to itself is a no-op", func(t *testing.T) {
		dir := t.TempDir()
		old := mkfile(t, dir, "Already - 2020 - Correct.pdf")

		got, err := Rename(old, "Already - 2020 - Correct.pdf", "")
		require.NoError(t, err)
		assert.Equal(t, old, got)
		assert.FileExists(t, old)
	})

	t.Run("output dir created", func(t *testing.T) {
		dir := t.TempDir()
		old := mkfile(t, dir, "orig.pdf")
		outDir := filepath.Join(dir, "sorted", "2020")

		got, err := Rename(old, "new.pdf", outDir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(outDir, "new.pdf"), got)
		assert.FileExists(t, got)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := Rename(filepath.Join(t.TempDir(), "gone.pdf"), "new.pdf", "")
		var opErr *FileOpError
		require.ErrorAs(t, err, &opErr)
	})
}
