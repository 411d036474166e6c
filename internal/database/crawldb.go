package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mkosuda/linkmap/internal/model"
)

// DBFilename is the SQLite database filename inside the data directory.
const DBFilename = "linkmap.db"

// CrawlDB provides SQLite-based storage for finished crawl reports.
// It manages connection pooling and provides methods for saving and
// querying crawl history.
//
// Design decision: We use a single database file for all crawled domains
// rather than one file per domain. This simplifies history queries across
// domains and backup/restore operations.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, DBFilename)

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Crawl reports store one row per finished crawl
	CREATE TABLE IF NOT EXISTS crawl_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root_domain TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		urls_visited INTEGER NOT NULL,
		pages_fetched INTEGER NOT NULL,
		fetch_failures INTEGER NOT NULL,
		links_discovered INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_domain ON crawl_reports(root_domain);
	CREATE INDEX IF NOT EXISTS idx_reports_started ON crawl_reports(started_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawl saves a finished crawl report.
// The full report is stored as JSON alongside queryable summary columns.
func (cdb *CrawlDB) SaveCrawl(ctx context.Context, report *model.CrawlReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO crawl_reports (root_domain, started_at, elapsed_ms, urls_visited, pages_fetched, fetch_failures, links_discovered, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		report.RootDomain,
		report.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		report.Elapsed.Milliseconds(),
		report.Stats.URLsVisited,
		report.Stats.PagesFetched,
		report.Stats.FetchFailures,
		report.Stats.LinksDiscovered,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save crawl report: %w", err)
	}

	return result.LastInsertId()
}

// GetLatestCrawl retrieves the most recent crawl report for a root domain.
// Returns nil without error when no crawl exists for the domain.
func (cdb *CrawlDB) GetLatestCrawl(ctx context.Context, rootDomain string) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM crawl_reports
	WHERE root_domain = ?
	ORDER BY started_at DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, rootDomain).Scan(&reportJSON)
	if err == sql.ErrNoRows {
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

// GetCrawlByID retrieves a crawl report by its database ID.
// Returns nil without error when the ID does not exist.
func (cdb *CrawlDB) GetCrawlByID(ctx context.Context, id int64) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM crawl_reports
	WHERE id = ?
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
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

// ListCrawledDomains returns every root domain with at least one stored
// crawl, sorted alphabetically.
func (cdb *CrawlDB) ListCrawledDomains(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT root_domain FROM crawl_reports
	ORDER BY root_domain
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
}

// CrawlMetadata contains summary information about a stored crawl.
// This is used for displaying crawl history without loading the full report.
type CrawlMetadata struct {
	// ID is the unique identifier of the crawl in the database.
	ID int64

	// RootDomain is the crawled domain.
	RootDomain string

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// Elapsed is the total crawl duration.
	Elapsed time.Duration

	// URLsVisited is the number of unique URLs claimed for traversal.
	URLsVisited int

	// PagesFetched is the number of pages successfully fetched.
	PagesFetched int

	// FetchFailures is the number of failed page fetches.
	FetchFailures int

	// LinksDiscovered is the total number of accepted links.
	LinksDiscovered int
}

// GetCrawlHistory retrieves crawl metadata, newest first. An empty
// rootDomain returns the history of every domain.
// This is more efficient than loading full reports when only summary
// information is needed.
func (cdb *CrawlDB) GetCrawlHistory(ctx context.Context, rootDomain string) ([]CrawlMetadata, error) {
	query := `
	SELECT id, root_domain, started_at, elapsed_ms, urls_visited, pages_fetched, fetch_failures, links_discovered
	FROM crawl_reports
	`
	args := make([]interface{}, 0)

	if rootDomain != "" {
		query += " WHERE root_domain = ?"
		args = append(args, rootDomain)
	}

	query += " ORDER BY started_at DESC, id DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl history: %w", err)
	}
	defer rows.Close()

	var results []CrawlMetadata
	for rows.Next() {
		var meta CrawlMetadata
		var startedAt string
		var elapsedMS int64

		err := rows.Scan(
			&meta.ID,
			&meta.RootDomain,
			&startedAt,
			&elapsedMS,
			&meta.URLsVisited,
			&meta.PagesFetched,
			&meta.FetchFailures,
			&meta.LinksDiscovered,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		// Parse timestamp (SQLite may return different formats depending on version/configuration)
		meta.StartedAt = parseTimestamp(startedAt)
		meta.Elapsed = time.Duration(elapsedMS) * time.Millisecond

		results = append(results, meta)
	}

	return results, rows.Err()
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

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
