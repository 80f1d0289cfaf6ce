// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfmeta/internal/crossref"
	"github.com/pdiddy/pdfmeta/internal/pdfx"
	"github.com/pdiddy/pdfmeta/pkg/types"
)

// --- scripted collaborators ---

type fakeExtractor struct {
	doc   types.DocumentMetadata
	err   error
	calls int
}

func (f *fakeExtractor) Extract(path string) (types.DocumentMetadata, error) {
	f.calls++
	return f.doc, f.err
}

type fakeCatalog struct {
	matches     []types.Match
	searchErr   error
	searchCalls int

	fetched    types.Match
	fetchErr   error
	fetchCalls int
	fetchDOI   string

	// errOnce makes searchErr fire only on the first call.
	errOnce bool
}

func (f *fakeCatalog) Search(ctx context.Context, title, author, year, journal string, max int) ([]types.Match, error) {
	f.searchCalls++
	if f.searchErr != nil {
		err := f.searchErr
		if f.errOnce {
			f.searchErr = nil
		}
		return nil, err
	}
	return f.matches, nil
}

func (f *fakeCatalog) FetchByDOI(ctx context.Context, doi string) (types.Match, error) {
	f.fetchCalls++
	f.fetchDOI = doi
	return f.fetched, f.fetchErr
}

type fakeWriter struct {
	paths []string
	md    types.MetadataUpdate
	err   error
}

func (f *fakeWriter) Write(path string, md types.MetadataUpdate, outputPath string) error {
	f.paths = append(f.paths, path)
	f.md = md
	return f.err
}

type logEntry struct {
	kind    string
	path    string
	newPath string
	doi     string
	reason  string
	errMsg  string
}

type fakeLog struct {
	entries []logEntry
	closed  bool
}

func (f *fakeLog) Success(originalPath, newPath, doi string, confidence float64, usedOCR bool) {
	f.entries = append(f.entries, logEntry{kind: "success", path: originalPath, newPath: newPath, doi: doi})
}

func (f *fakeLog) Skip(originalPath, reason string) {
	f.entries = append(f.entries, logEntry{kind: "skipped", path: originalPath, reason: reason})
}

func (f *fakeLog) Failure(originalPath, errMsg string, attempts int) {
	f.entries = append(f.entries, logEntry{kind: "failed", path: originalPath, errMsg: errMsg})
}

func (f *fakeLog) Path() string { return "test.json" }

func (f *fakeLog) Close() error {
	f.closed = true
	return nil
}

type fakeHistory struct {
	seen     map[string]string
	recorded map[string]string
}

func (f *fakeHistory) Seen(path string) (string, bool, error) {
	doi, ok := f.seen[path]
	return doi, ok, nil
}

func (f *fakeHistory) Record(path, doi string, score float64) error {
	if f.recorded == nil {
		f.recorded = map[string]string{}
	}
	f.recorded[path] = doi
	return nil
}

// --- harness ---

type harness struct {
	engine    *Engine
	extractor *fakeExtractor
	catalog   *fakeCatalog
	writer    *fakeWriter
	log       *fakeLog
	renamed   []string
	out       *bytes.Buffer
}

func newHarness(cfg types.ProcessConfig, input string) *harness {
	h := &harness{
		extractor: &fakeExtractor{doc: types.DocumentMetadata{Title: "Deep Learning", Year: "2020"}},
		catalog: &fakeCatalog{matches: []types.Match{{
			DOI:     "10.1/top",
			Title:   "Deep Learning",
			Authors: []string{"Jane Smith"},
			Year:    "2020",
			Score:   0.91,
		}}},
		writer: &fakeWriter{},
		log:    &fakeLog{},
		out:    &bytes.Buffer{},
	}
	h.engine = &Engine{
		Extractor: h.extractor,
		Catalog:   h.catalog,
		Writer:    h.writer,
		Rename: func(oldPath, newName, outputDir string) (string, error) {
			h.renamed = append(h.renamed, newName)
			return "/out/" + newName, nil
		},
		Log:    h.log,
		UI:     &UI{In: strings.NewReader(input), Out: h.out},
		Config: cfg,
	}
	return h
}

func batchConfig() types.ProcessConfig {
	return types.ProcessConfig{BatchMode: true, Rename: true}
}

// --- batch mode ---

func TestRun_BatchAutoAccept(t *testing.T) {
	h := newHarness(batchConfig(), "")

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Completed: 1}, stats)
	assert.Equal(t, []string{"/in/a.pdf"}, h.writer.paths)
	assert.Equal(t, "10.1/top", h.writer.md.DOI)
	assert.Equal(t, "Jane Smith", h.writer.md.Authors)

	require.Len(t, h.renamed, 1)
	assert.Contains(t, h.renamed[0], "Smith - 2020 - Deep Learning")

	require.Len(t, h.log.entries, 1)
	assert.Equal(t, "success", h.log.entries[0].kind)
	assert.Equal(t, "/out/"+h.renamed[0], h.log.entries[0].newPath)
	assert.True(t, h.log.closed)
}

func TestRun_BatchLowConfidenceSkips(t *testing.T) {
	h := newHarness(batchConfig(), "")
	h.catalog.matches[0].Score = 0.55

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Skipped: 1}, stats)
	assert.Empty(t, h.writer.paths)
	assert.Empty(t, h.renamed)
	require.Len(t, h.log.entries, 1)
	assert.Equal(t, "skipped", h.log.entries[0].kind)
	assert.Contains(t, h.log.entries[0].reason, "confidence below threshold")
}

func TestRun_NoMatchesSkips(t *testing.T) {
	h := newHarness(batchConfig(), "")
	h.catalog.matches = nil

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Skipped: 1}, stats)
	assert.Empty(t, h.writer.paths)
	require.Len(t, h.log.entries, 1)
	assert.Equal(t, "no Crossref matches found", h.log.entries[0].reason)
}

func TestRun_MissingFileFails(t *testing.T) {
	h := newHarness(batchConfig(), "")
	h.extractor.err = &pdfx.NotFoundError{Path: "/in/a.pdf"}

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Failed: 1}, stats)
	assert.Equal(t, 0, h.catalog.searchCalls)
	require.Len(t, h.log.entries, 1)
	assert.Equal(t, "failed", h.log.entries[0].kind)
}

func TestRun_BatchConnectionErrorFails(t *testing.T) {
	h := newHarness(batchConfig(), "")
	h.catalog.searchErr = &crossref.ConnectionError{Attempts: 3, Err: errors.New("dial timeout")}

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Failed: 1}, stats)
	assert.Empty(t, h.writer.paths)
}

func TestRun_EveryFileGetsOneOutcome(t *testing.T) {
	h := newHarness(batchConfig(), "")
	files := []string{"/in/a.pdf", "/in/b.pdf", "/in/c.pdf"}

	stats := h.engine.Run(context.Background(), files)

	assert.Equal(t, len(files), stats.Total())
	assert.Len(t, h.log.entries, len(files))
}

// --- direct DOI path ---

func TestRun_DocumentDOIFetchedDirectly(t *testing.T) {
	h := newHarness(batchConfig(), "")
	h.extractor.doc.DOI = "10.1/embedded"
	h.catalog.fetched = types.Match{DOI: "10.1/embedded", Title: "Deep Learning", Score: 1.0}

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Completed: 1}, stats)
	assert.Equal(t, "10.1/embedded", h.catalog.fetchDOI)
	assert.Equal(t, 0, h.catalog.searchCalls)
}

func TestRun_DOIFetchFailureFallsBackToSearch(t *testing.T) {
	h := newHarness(batchConfig(), "")
	h.extractor.doc.DOI = "10.1/bogus"
	h.catalog.fetchErr = &crossref.APIError{StatusCode: 404, Body: "not found"}

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Completed: 1}, stats)
	assert.Equal(t, 1, h.catalog.fetchCalls)
	assert.Equal(t, 1, h.catalog.searchCalls)
}

// --- interactive mode ---

func interactiveConfig() types.ProcessConfig {
	return types.ProcessConfig{Rename: true}
}

func TestRun_InteractiveSelectAndApply(t *testing.T) {
	h := newHarness(interactiveConfig(), "1\na\n")

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Completed: 1}, stats)
	assert.Equal(t, []string{"/in/a.pdf"}, h.writer.paths)
	assert.Contains(t, h.out.String(), "Deep Learning")
}

func TestRun_InteractiveSkip(t *testing.T) {
	h := newHarness(interactiveConfig(), "s\n")

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Skipped: 1}, stats)
	assert.Empty(t, h.writer.paths)
	assert.Equal(t, "user skipped", h.log.entries[0].reason)
}

func TestRun_InteractiveDeclineMetadata(t *testing.T) {
	h := newHarness(interactiveConfig(), "1\ns\n")

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Skipped: 1}, stats)
	assert.Empty(t, h.writer.paths)
	assert.Equal(t, "user declined metadata", h.log.entries[0].reason)
}

func TestRun_InteractiveQuitAbortsQueue(t *testing.T) {
	h := newHarness(interactiveConfig(), "q\n")

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf", "/in/b.pdf"})

	// The aborted file gets no outcome and the rest of the queue is untouched,
	// but the log is still flushed.
	assert.Equal(t, RunStats{}, stats)
	assert.Equal(t, 1, h.extractor.calls)
	assert.Empty(t, h.log.entries)
	assert.True(t, h.log.closed)
}

func TestRun_InteractiveManualDOI(t *testing.T) {
	h := newHarness(interactiveConfig(), "m\n10.1/manual\na\n")
	h.catalog.fetched = types.Match{DOI: "10.1/manual", Title: "Manual Pick", Score: 1.0}

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Completed: 1}, stats)
	assert.Equal(t, "10.1/manual", h.catalog.fetchDOI)
	assert.Equal(t, "10.1/manual", h.writer.md.DOI)
}

func TestRun_InteractiveManualDOIInvalid(t *testing.T) {
	h := newHarness(interactiveConfig(), "m\n10.1/nope\n")
	h.catalog.fetchErr = &crossref.APIError{StatusCode: 404, Body: "not found"}

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Failed: 1}, stats)
	require.Len(t, h.log.entries, 1)
	assert.Contains(t, h.log.entries[0].errMsg, "invalid DOI")
}

func TestRun_InteractiveRetryAfterConnectionError(t *testing.T) {
	h := newHarness(interactiveConfig(), "r\n1\na\n")
	h.catalog.searchErr = &crossref.ConnectionError{Attempts: 3, Err: errors.New("dial timeout")}
	h.catalog.errOnce = true

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Completed: 1}, stats)
	assert.Equal(t, 2, h.catalog.searchCalls)
	assert.Equal(t, 2, h.extractor.calls)
}

func TestRun_WriteErrorNotRetryable(t *testing.T) {
	h := newHarness(interactiveConfig(), "1\na\ns\n")
	h.writer.err = errors.New("disk full")

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Failed: 1}, stats)
	// The error prompt must not offer retry for a write failure.
	assert.NotContains(t, h.out.String(), "[r]etry | [s]kip")
}

// --- rename and history ---

func TestRun_RenameDisabled(t *testing.T) {
	cfg := batchConfig()
	cfg.Rename = false
	h := newHarness(cfg, "")

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Completed: 1}, stats)
	assert.Empty(t, h.renamed)
	assert.Equal(t, "/in/a.pdf", h.log.entries[0].newPath)
}

func TestRun_HistorySkipsSeenFiles(t *testing.T) {
	h := newHarness(batchConfig(), "")
	h.engine.History = &fakeHistory{seen: map[string]string{"/in/a.pdf": "10.1/old"}}

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Skipped: 1}, stats)
	assert.Equal(t, 0, h.extractor.calls)
	assert.Contains(t, h.log.entries[0].reason, "already processed")
}

func TestRun_ForceBypassesHistory(t *testing.T) {
	cfg := batchConfig()
	cfg.Force = true
	h := newHarness(cfg, "")
	hist := &fakeHistory{seen: map[string]string{"/in/a.pdf": "10.1/old"}}
	h.engine.History = hist

	stats := h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	assert.Equal(t, RunStats{Completed: 1}, stats)
	assert.Equal(t, 1, h.extractor.calls)
	// The new outcome lands in history under the renamed path.
	require.Len(t, hist.recorded, 1)
}

func TestRun_RecordsHistoryUnderFinalPath(t *testing.T) {
	h := newHarness(batchConfig(), "")
	hist := &fakeHistory{}
	h.engine.History = hist

	h.engine.Run(context.Background(), []string{"/in/a.pdf"})

	require.Len(t, hist.recorded, 1)
	for path, doi := range hist.recorded {
		assert.True(t, strings.HasPrefix(path, "/out/"))
		assert.Equal(t, "10.1/top", doi)
	}
}
