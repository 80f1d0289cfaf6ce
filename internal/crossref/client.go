// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crossref queries the Crossref works API for bibliographic matches.
// The client enforces a minimum inter-request spacing, retries transient
// failures with exponential backoff, and scores returned records against the
// query with fuzzy title matching.
package crossref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/pdfmeta/pkg/types"
)

// worksBase is the Crossref works endpoint. Declared as a var so tests can
// substitute an httptest server.
var worksBase = "https://api.crossref.org/works"

const (
	defaultRetries            = 3
	defaultTimeout            = 30 * time.Second
	defaultBackoffFactor      = 1 * time.Second
	defaultMinRequestInterval = 500 * time.Millisecond
)

// APIError is a non-retryable remote rejection (HTTP 4xx). It carries the
// status code and response body so callers can report the remote's reason.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Crossref API error %d: %s", e.StatusCode, e.Body)
}

// ConnectionError indicates the remote could not be reached after exhausting
// the configured number of attempts. Distinct from APIError so callers can
// tell "remote said no" from "could not reach remote".
type ConnectionError struct {
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("Crossref connection failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Client talks to the Crossref API. One instance owns the rate-limiter state;
// all requests it issues are serialized through the spacing guard.
type Client struct {
	httpClient *http.Client
	cfg        types.CrossrefConfig

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a Crossref client. Zero config fields fall back to
// defaults: 3 attempts, 30s timeout, 1s backoff base, 500ms request spacing.
func NewClient(cfg types.CrossrefConfig) *Client {
	if cfg.Retries <= 0 {
		cfg.Retries = defaultRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = defaultBackoffFactor
	}
	if cfg.MinRequestInterval <= 0 {
		cfg.MinRequestInterval = defaultMinRequestInterval
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fmt.Sprintf("pdfmeta/1.0 (mailto:%s)", cfg.Email)
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// waitForRateLimit sleeps until MinRequestInterval has elapsed since the
// previous request from this client.
func (c *Client) waitForRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if since := time.Since(c.lastRequest); since < c.cfg.MinRequestInterval {
		time.Sleep(c.cfg.MinRequestInterval - since)
	}
	c.lastRequest = time.Now()
}

// getJSON performs a GET with rate limiting and retry. 4xx responses fail
// immediately with *APIError; 5xx and transport failures are retried with
// exponential backoff (BackoffFactor × 2^attempt) until the configured number
// of attempts is exhausted, then surface as *ConnectionError.
func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	var lastErr error

	for attempt := 0; attempt < c.cfg.Retries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.BackoffFactor * (1 << (attempt - 1))
			select {
			case <-ctx.Done():
				return &ConnectionError{Attempts: attempt, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		c.waitForRateLimit()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("parsing Crossref response: %w", err)
			}
			return nil

		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}

		default:
			// Server error: drain and retry.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("server error %d", resp.StatusCode)
		}
	}

	return &ConnectionError{Attempts: c.cfg.Retries, Err: lastErr}
}

// lastnamePattern matches a "Lastname," prefix in an author hint.
var lastnamePattern = regexp.MustCompile(`([A-Z][a-zA-Z\-]+),`)

// buildQuery collects up to 3 non-empty parts in priority order: title
// (title-cased if all uppercase), author family name, year.
func buildQuery(title, author, year string) string {
	var parts []string

	if title != "" {
		if isUpper(title) {
			title = titleCase(title)
		}
		parts = append(parts, title)
	}

	if author != "" {
		if m := lastnamePattern.FindStringSubmatch(author); m != nil {
			parts = append(parts, m[1])
		} else if words := strings.Fields(author); len(words) > 1 {
			parts = append(parts, words[len(words)-1])
		} else {
			parts = append(parts, author)
		}
	}

	if year != "" {
		parts = append(parts, year)
	}

	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, " ")
}

// Search queries Crossref for records matching the given hints and returns
// scored candidates sorted descending by score, truncated to maxResults.
// Records lacking a DOI or a title are discarded before scoring. It requests
// 2× maxResults raw rows to allow for score-based re-ranking. The journal
// hint participates in scoring only, never in the query string.
func (c *Client) Search(ctx context.Context, title, author, year, journal string, maxResults int) ([]types.Match, error) {
	query := buildQuery(title, author, year)
	if query == "" {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	reqURL := fmt.Sprintf("%s?query=%s&rows=%d", worksBase, url.QueryEscape(query), maxResults*2)

	var data worksResponse
	if err := c.getJSON(ctx, reqURL, &data); err != nil {
		return nil, err
	}

	var matches []types.Match
	for _, item := range data.Message.Items {
		if item.DOI == "" || len(item.Title) == 0 || item.Title[0] == "" {
			continue
		}
		matches = append(matches, types.Match{
			DOI:     item.DOI,
			Title:   item.Title[0],
			Authors: itemAuthors(item),
			Year:    itemYear(item),
			Journal: itemJournal(item),
			Score:   scoreItem(item, title, author, year, journal),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

// doiPattern extracts a bare DOI from resolver URLs and surrounding noise.
var doiPattern = regexp.MustCompile(`(10\.\d{4,9}/[-._;()/:A-Za-z0-9]+)`)

// FetchByDOI fetches the full record for a DOI. Resolver-URL identifiers
// ("https://doi.org/10.x/y") are normalized to the bare DOI first. If the
// initial request ends without a 2xx (a 4xx rejection or an exhausted retry
// loop), one fallback request is made with the DOI percent-encoded; the
// retry loop still applies to each request.
func (c *Client) FetchByDOI(ctx context.Context, doi string) (types.Match, error) {
	cleaned := strings.TrimSpace(doi)
	if strings.HasPrefix(cleaned, "http") {
		if m := doiPattern.FindString(cleaned); m != "" {
			cleaned = m
		}
	}

	var data workResponse
	err := c.getJSON(ctx, worksBase+"/"+cleaned, &data)
	if err != nil {
		var apiErr *APIError
		var connErr *ConnectionError
		if !errors.As(err, &apiErr) && !errors.As(err, &connErr) {
			return types.Match{}, err
		}
		// One-shot fallback with the identifier URL-encoded.
		if encErr := c.getJSON(ctx, worksBase+"/"+url.PathEscape(cleaned), &data); encErr != nil {
			return types.Match{}, err
		}
	}

	item := data.Message
	if item.DOI == "" {
		return types.Match{}, &APIError{StatusCode: http.StatusNotFound, Body: "record has no DOI"}
	}

	m := types.Match{
		DOI:     item.DOI,
		Authors: itemAuthors(item),
		Year:    itemYear(item),
		Journal: itemJournal(item),
		Score:   1.0,
	}
	if len(item.Title) > 0 {
		m.Title = item.Title[0]
	}
	if len(item.ISBN) > 0 {
		m.ISBN = item.ISBN[0]
	}
	return m, nil
}

// isUpper reports whether s contains at least one letter and no lowercase letters.
func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if (r >= 'A' && r <= 'Z') || r > 127 {
			hasLetter = true
		}
	}
	return hasLetter
}

// titleCase capitalizes the first letter of each word and lowercases the rest.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// itemYear returns the record's publication year, preferring print date,
// then online date, then record creation date.
func itemYear(item workItem) string {
	for _, d := range []*workDate{item.PublishedPrint, item.PublishedOnline, item.Created} {
		if d == nil {
			continue
		}
		if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
			return fmt.Sprintf("%d", d.DateParts[0][0])
		}
	}
	return ""
}

// itemAuthors formats the record's authors as "Given Family" strings.
func itemAuthors(item workItem) []string {
	var authors []string
	for _, a := range item.Author {
		switch {
		case a.Given != "" && a.Family != "":
			authors = append(authors, a.Given+" "+a.Family)
		case a.Family != "":
			authors = append(authors, a.Family)
		}
	}
	return authors
}

func itemJournal(item workItem) string {
	if len(item.ContainerTitle) > 0 {
		return item.ContainerTitle[0]
	}
	return ""
}

// Crossref API JSON structures.
type worksResponse struct {
	Message worksMessage `json:"message"`
}

type worksMessage struct {
	Items []workItem `json:"items"`
}

type workResponse struct {
	Message workItem `json:"message"`
}

type workItem struct {
	DOI             string       `json:"DOI"`
	Title           []string     `json:"title"`
	Author          []workAuthor `json:"author"`
	PublishedPrint  *workDate    `json:"published-print"`
	PublishedOnline *workDate    `json:"published-online"`
	Created         *workDate    `json:"created"`
	ContainerTitle  []string     `json:"container-title"`
	ISBN            []string     `json:"ISBN"`
	Publisher       string       `json:"publisher"`
	Type            string       `json:"type"`
}

type workAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type workDate struct {
	DateParts [][]int `json:"date-parts"`
}
