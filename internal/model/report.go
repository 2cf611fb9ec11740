package model

import "time"

// CrawlReport accumulates the results of one crawl run over a single seed.
// Pipeline steps append to it in sequence: the crawl step fills Pages, the
// detect step fills Credentials, the alert step counts notifications.
//
// Design decision: Steps share one mutable report rather than passing values
// between each other because:
//  1. Each step's output is naturally additive
//  2. The final report is the unit of output (text/JSON/Markdown)
//  3. It mirrors how failures are recorded without aborting the run
type CrawlReport struct {
	// Seed is the normalized address the crawl started from.
	Seed string `json:"seed"`

	// StartedAt and FinishedAt bracket the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Pages contains every page successfully fetched this run.
	Pages []*Page `json:"pages,omitempty"`

	// PagesCrawled is the number of successful fetches.
	PagesCrawled int `json:"pages_crawled"`

	// PagesFailed is the number of frontier entries skipped due to
	// fetch errors. Failures never abort the run.
	PagesFailed int `json:"pages_failed"`

	// Credentials contains every credential record discovered this run.
	Credentials []Credential `json:"credentials,omitempty"`

	// AlertsSent is the number of notifications successfully delivered.
	AlertsSent int `json:"alerts_sent"`

	// AlertsFailed is the number of notifications that could not be
	// delivered. Delivery failures are logged, never fatal.
	AlertsFailed int `json:"alerts_failed"`

	// Errors collects non-fatal errors encountered during the run.
	Errors []string `json:"errors,omitempty"`
}

// NewCrawlReport creates an empty report for the given seed.
func NewCrawlReport(seed string) *CrawlReport {
	return &CrawlReport{
		Seed:      seed,
		StartedAt: time.Now(),
	}
}

// AddError records a non-fatal error message.
func (r *CrawlReport) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Duration returns the elapsed run time, or the time since start if the
// run has not finished.
func (r *CrawlReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
