package types

import "time"

// HTTPConfig holds shared HTTP settings used by the fetcher.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "arxiv-scraper/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetryConfig bounds the retry of transient connection failures.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt (default 5,
	// 0 = no retries).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// BaseDelay is the first backoff delay; it doubles on each retry (default 1s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay"`

	// MaxDelay caps a single backoff delay (default 30s).
	MaxDelay time.Duration `json:"max_delay" yaml:"max_delay"`
}

// OutputFormat selects the output sink.
type OutputFormat string

const (
	OutputCSV    OutputFormat = "csv"
	OutputSQLite OutputFormat = "sqlite"
)

// OutputConfig holds settings for the output file.
type OutputConfig struct {
	// Path is the output file, overwritten on every successful run.
	Path string `json:"path" yaml:"path"`

	// Format selects the sink: csv or sqlite.
	Format OutputFormat `json:"format" yaml:"format"`
}

// ScrapeConfig groups every setting of a scrape run.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the arXiv query endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Categories lists the category codes to scrape, in order.
	Categories []string `json:"categories" yaml:"categories"`

	// PageSize is the number of records requested per page (default 500).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxEmptyRetries is how many times an empty page is re-requested
	// before a category is abandoned (default 5).
	MaxEmptyRetries int `json:"max_empty_retries" yaml:"max_empty_retries"`

	// MaxIterations caps the number of non-empty pages per category
	// (default 20, 0 = no cap).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// PageDelay is the politeness pause after every non-empty page (default 1s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// EmptyRetryDelay is the pause before re-requesting an empty page (default 2s).
	EmptyRetryDelay time.Duration `json:"empty_retry_delay" yaml:"empty_retry_delay"`

	// RateLimit is the maximum number of requests per second (0 = unlimited).
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// Retry bounds connection-level retries inside a single fetch.
	Retry RetryConfig `json:"retry" yaml:"retry"`

	// Output selects where records are written.
	Output OutputConfig `json:"output" yaml:"output"`
}
