package config

import "errors"

// Configuration validation errors.
// These are package-level sentinel errors so callers can use errors.Is()
// for programmatic handling while still getting readable messages.
var (
	// ErrNoTarget is returned when no seed onion address is specified.
	ErrNoTarget = errors.New("no target specified: provide one or more onion addresses")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is not positive.
	// The page limit is what guarantees crawl termination on cyclic sites.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidCrawlDepth is returned when the crawl depth is negative.
	ErrInvalidCrawlDepth = errors.New("invalid crawl depth: must be non-negative")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrIncompleteMailConfig is returned when mail settings are partially
	// specified. Either configure host, sender, and receiver, or none.
	ErrIncompleteMailConfig = errors.New("incomplete mail config: host, sender, and receiver are all required")
)
