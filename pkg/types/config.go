package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pdfmeta/1.0 (mailto:user@example.com)").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CrossrefConfig holds settings for the Crossref catalog client.
type CrossrefConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is the contact address sent for polite-pool access. Required.
	Email string `json:"email" yaml:"email"`

	// Retries is the total number of attempts for transient failures (default 3).
	Retries int `json:"retries" yaml:"retries"`

	// BackoffFactor is the base duration for exponential backoff between
	// attempts (default 1s). Tests set this to ~1ms to avoid real sleeps.
	BackoffFactor time.Duration `json:"backoff_factor" yaml:"backoff_factor"`

	// MinRequestInterval is the minimum spacing between consecutive requests
	// from one client instance (default 500ms).
	MinRequestInterval time.Duration `json:"min_request_interval" yaml:"min_request_interval"`
}

// ExtractionConfig holds settings for the document extractor.
type ExtractionConfig struct {
	// UseOCR enables the OCR fallback for scanned documents when the OCR
	// binaries are available on PATH.
	UseOCR bool `json:"use_ocr" yaml:"use_ocr"`

	// OCRPages is the number of pages to OCR (default 1).
	OCRPages int `json:"ocr_pages" yaml:"ocr_pages"`
}

// ProcessConfig holds settings for the decision engine.
type ProcessConfig struct {
	// BatchMode auto-accepts the top match when its score is at least 0.80
	// and skips the file otherwise, with no prompting.
	BatchMode bool `json:"batch_mode" yaml:"batch_mode"`

	// Rename controls renaming files to "Author - Year - Title.pdf" form.
	Rename bool `json:"rename" yaml:"rename"`

	// Sidecar writes a YAML metadata record next to each enriched PDF.
	Sidecar bool `json:"sidecar" yaml:"sidecar"`

	// Force reprocesses files already recorded in the history store.
	Force bool `json:"force" yaml:"force"`

	// InterFileDelay is the pause between consecutive files when more than
	// one file is processed, to stay polite to the remote catalog.
	InterFileDelay time.Duration `json:"inter_file_delay" yaml:"inter_file_delay"`

	// Verbose prints detailed per-step information.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Quiet restricts output to errors and the final summary.
	Quiet bool `json:"quiet" yaml:"quiet"`
}
