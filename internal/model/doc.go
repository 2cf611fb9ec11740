// Package model defines the core data types shared across leakspider:
// crawled pages, credential records, and crawl run reports.
package model
