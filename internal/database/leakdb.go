package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/leakspider/leakspider/internal/model"
)

// LeakDB provides SQLite-based storage for discovered credentials and
// crawl reports.
//
// Design decision: We use a single database file for all target services
// rather than one file per service. Deduplication must work across runs
// and across targets, and a single file keeps backup trivial.
type LeakDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures LeakDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a LeakDB under the specified directory.
func Open(dbDir string, opts Options) (*LeakDB, error) {
	dbPath := filepath.Join(dbDir, "leakspider.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to refuse creating new files and
	// mode=rwc to allow it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer; a single connection avoids
	// SQLITE_BUSY without a retry loop.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ldb := &LeakDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := ldb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return ldb, nil
}

// Close closes the database connection.
func (ldb *LeakDB) Close() error {
	return ldb.db.Close()
}

// Path returns the path of the underlying database file.
func (ldb *LeakDB) Path() string {
	return ldb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (ldb *LeakDB) createTables() error {
	schema := `
	-- Credentials store discovered (identifier, secret hash) pairs.
	-- The UNIQUE constraint is the cross-run deduplication mechanism.
	CREATE TABLE IF NOT EXISTS credentials (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		identifier TEXT NOT NULL,
		secret_hash TEXT NOT NULL,
		source_url TEXT NOT NULL,
		service TEXT NOT NULL,
		matcher TEXT NOT NULL,
		found_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(identifier, secret_hash, source_url)
	);

	CREATE INDEX IF NOT EXISTS idx_credentials_identifier ON credentials(identifier);
	CREATE INDEX IF NOT EXISTS idx_credentials_service ON credentials(service);
	CREATE INDEX IF NOT EXISTS idx_credentials_found_at ON credentials(found_at);

	-- Crawl reports store complete per-seed run results as JSON.
	CREATE TABLE IF NOT EXISTS crawl_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_seed ON crawl_reports(seed);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON crawl_reports(timestamp);
	`

	_, err := ldb.db.ExecContext(context.Background(), schema)
	return err
}

// InsertCredential stores a credential record. It returns true when the
// record is new and false when the same (identifier, hash, source) was
// already stored by an earlier run.
func (ldb *LeakDB) InsertCredential(ctx context.Context, cred *model.Credential) (bool, error) {
	query := `
	INSERT INTO credentials (identifier, secret_hash, source_url, service, matcher, found_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(identifier, secret_hash, source_url) DO NOTHING
	`

	result, err := ldb.db.ExecContext(ctx, query,
		cred.Identifier,
		cred.SecretHash,
		cred.SourceURL,
		cred.Service,
		cred.Matcher,
		cred.FoundAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert credential: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check insert result: %w", err)
	}
	return affected > 0, nil
}

// ListCredentials returns stored credentials, optionally filtered by
// identifier or service. Empty filters match everything.
func (ldb *LeakDB) ListCredentials(ctx context.Context, identifier, service string) ([]model.Credential, error) {
	query := `
	SELECT identifier, secret_hash, source_url, service, matcher, found_at
	FROM credentials
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if identifier != "" {
		query += " AND identifier = ?"
		args = append(args, identifier)
	}
	if service != "" {
		query += " AND service = ?"
		args = append(args, service)
	}
	query += " ORDER BY found_at DESC, id DESC"

	rows, err := ldb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read side only

	var results []model.Credential
	for rows.Next() {
		var cred model.Credential
		var foundAt string
		if err := rows.Scan(
			&cred.Identifier,
			&cred.SecretHash,
			&cred.SourceURL,
			&cred.Service,
			&cred.Matcher,
			&foundAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		cred.FoundAt = parseTimestamp(foundAt)
		results = append(results, cred)
	}

	return results, rows.Err()
}

// CountCredentials returns the number of stored credential records.
func (ldb *LeakDB) CountCredentials(ctx context.Context) (int, error) {
	var count int
	if err := ldb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM credentials").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count credentials: %w", err)
	}
	return count, nil
}

// SaveCrawlReport stores a complete crawl report as JSON.
func (ldb *LeakDB) SaveCrawlReport(ctx context.Context, report *model.CrawlReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO crawl_reports (seed, report_json)
	VALUES (?, ?)
	`
	if _, err := ldb.db.ExecContext(ctx, query, report.Seed, string(reportJSON)); err != nil {
		return fmt.Errorf("failed to save crawl report: %w", err)
	}
	return nil
}

// GetLatestCrawlReport retrieves the most recent crawl report for a seed,
// or nil when the seed has never been crawled.
func (ldb *LeakDB) GetLatestCrawlReport(ctx context.Context, seed string) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM crawl_reports
	WHERE seed = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := ldb.db.QueryRowContext(ctx, query, seed).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// ListCrawledSeeds returns every seed that has at least one stored report.
func (ldb *LeakDB) ListCrawledSeeds(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT seed FROM crawl_reports
	ORDER BY seed
	`

	rows, err := ldb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read side only

	var seeds []string
	for rows.Next() {
		var seed string
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan seed: %w", err)
		}
		seeds = append(seeds, seed)
	}
	return seeds, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite returns different formats depending on configuration.
// Returns zero time when nothing matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
