package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "minutes-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScrapeConfig holds settings for the scrape stage.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// EventsCSV is the input CSV listing event pages (event, url, date).
	EventsCSV string `json:"events_csv" yaml:"events_csv"`

	// ResultsCSV is the output CSV of discovered PDF links.
	ResultsCSV string `json:"results_csv" yaml:"results_csv"`
}

// DownloadConfig holds settings for the download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// DocsDir is the directory PDFs are saved to.
	DocsDir string `json:"docs_dir" yaml:"docs_dir"`

	// EventFilter keeps only CSV rows whose event name contains this substring.
	// Empty means every row.
	EventFilter string `json:"event_filter" yaml:"event_filter"`
}

// AIConfig holds shared settings for stages that call the Messages API.
type AIConfig struct {
	// Model is the model identifier (e.g. "claude-sonnet-4-20250514").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens is the response token budget.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout is the per-call HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OCRConfig holds settings for the OCR fallback used by text extraction.
type OCRConfig struct {
	// Pdftoppm is the binary name or absolute path; if empty -> "pdftoppm".
	Pdftoppm string `json:"pdftoppm" yaml:"pdftoppm"`

	// Tesseract is the binary name or absolute path; if empty -> "tesseract".
	Tesseract string `json:"tesseract" yaml:"tesseract"`

	// DPI is the rasterization resolution for scanned pages (default 150).
	DPI int `json:"dpi" yaml:"dpi"`

	// Language is the tesseract language (default "eng").
	Language string `json:"language" yaml:"language"`
}

// VotesConfig holds settings for the voting-record extraction stage.
type VotesConfig struct {
	AIConfig `yaml:",inline"`

	// DocsDir is the directory holding the downloaded PDFs.
	DocsDir string `json:"docs_dir" yaml:"docs_dir"`

	// OutCSV is the primary voting-record CSV destination.
	OutCSV string `json:"out_csv" yaml:"out_csv"`

	// PublicCSV is the copy served to the front-end. Empty disables the copy.
	PublicCSV string `json:"public_csv" yaml:"public_csv"`

	// XLSXPath, when set, writes an XLSX workbook of the same rows.
	XLSXPath string `json:"xlsx_path,omitempty" yaml:"xlsx_path,omitempty"`

	// GuidePaths are candidate locations for the vote extraction guide,
	// tried in order.
	GuidePaths []string `json:"guide_paths" yaml:"guide_paths"`

	// IncludeAll processes every non-draft PDF, not just minutes-looking ones.
	IncludeAll bool `json:"include_all" yaml:"include_all"`

	// Limit caps the number of files processed (0 = no limit).
	Limit int `json:"limit" yaml:"limit"`
}

// ScanConfig holds settings for the member-vote scan stage.
type ScanConfig struct {
	AIConfig `yaml:",inline"`

	// DocsDir is the directory holding the downloaded PDFs.
	DocsDir string `json:"docs_dir" yaml:"docs_dir"`

	// OutJSON is the generated votes JSON destination.
	OutJSON string `json:"out_json" yaml:"out_json"`

	// Limit caps the number of files processed (default 3).
	Limit int `json:"limit" yaml:"limit"`
}

// ProcessConfig holds settings for the per-PDF JSON extraction stage.
type ProcessConfig struct {
	AIConfig `yaml:",inline"`

	// PDFDir is the directory of minutes PDFs.
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir"`

	// JSONDir is the directory per-document JSON files are written to.
	JSONDir string `json:"json_dir" yaml:"json_dir"`

	// GuidePaths are candidate locations for the minutes extraction guide.
	GuidePaths []string `json:"guide_paths" yaml:"guide_paths"`

	// TwoPassBytes is the PDF size above which the two-pass extraction is
	// used (0 = never).
	TwoPassBytes int64 `json:"two_pass_bytes" yaml:"two_pass_bytes"`

	// AssumeYes skips the interactive confirmation prompt.
	AssumeYes bool `json:"assume_yes" yaml:"assume_yes"`
}

// RecordsConfig holds settings for the SQLite records store.
type RecordsConfig struct {
	// IndexDir is the directory holding the SQLite database.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
