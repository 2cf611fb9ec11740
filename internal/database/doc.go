// Package database provides SQLite-backed storage for credential records
// and crawl history.
//
// The append-only results file (package results) remains the authoritative
// output the tool is asked for; the database exists on top of it for
// deduplication across runs and for the history subcommand.
package database
