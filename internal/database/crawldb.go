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

	"github.com/nao1215/sitesnap/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl history.
//
// Design decision: We use a single database file for all domains rather
// than one file per domain. This keeps cross-domain queries (list every
// crawled domain, compare runs) trivial and makes backup a single copy.
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

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "sitesnap.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
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

	// SQLite only supports one writer; extra connections just contend.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

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
	-- Crawl records store one row per crawl run
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL,
		seed_url TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		duration_ms INTEGER DEFAULT 0,
		pages_crawled INTEGER DEFAULT 0,
		pages_stored INTEGER DEFAULT 0,
		fetch_errors INTEGER DEFAULT 0,
		process_errors INTEGER DEFAULT 0,
		internal_links TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_domain ON crawls(domain);
	CREATE INDEX IF NOT EXISTS idx_crawls_started ON crawls(started_at);

	-- Pages store the documents produced by each crawl
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crawl_id INTEGER NOT NULL REFERENCES crawls(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		text TEXT,
		text_length INTEGER DEFAULT 0,
		scraped_at DATETIME,
		domain TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_crawl ON pages(crawl_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawl stores a crawl summary and its documents in one transaction.
// It returns the new crawl record's ID.
func (cdb *CrawlDB) SaveCrawl(ctx context.Context, summary *model.CrawlSummary, docs []model.PageDocument) (int64, error) {
	linksJSON, err := json.Marshal(summary.InternalLinks)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize internal links: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx, `
	INSERT INTO crawls (domain, seed_url, started_at, duration_ms, pages_crawled, pages_stored, fetch_errors, process_errors, internal_links)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.Domain,
		summary.SeedURL,
		summary.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		summary.Duration.Milliseconds(),
		summary.PagesCrawled,
		summary.PagesStored,
		summary.FetchErrors,
		summary.ProcessErrors,
		string(linksJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl record: %w", err)
	}

	crawlID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read crawl ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (crawl_id, url, text, text_length, scraped_at, domain)
	VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		if _, err := stmt.ExecContext(ctx,
			crawlID,
			doc.URL,
			doc.Text,
			doc.TextLength,
			doc.ScrapedAt.UTC().Format("2006-01-02 15:04:05"),
			doc.Domain,
		); err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", doc.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl: %w", err)
	}
	return crawlID, nil
}

// CrawlRecord is the stored metadata of one crawl run.
type CrawlRecord struct {
	// ID is the unique identifier of the crawl in the database.
	ID int64

	// Domain is the base domain the crawl was scoped to.
	Domain string

	// SeedURL is the normalized starting URL.
	SeedURL string

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// Duration is the wall-clock crawl duration.
	Duration time.Duration

	// PagesCrawled, PagesStored, FetchErrors, and ProcessErrors mirror
	// the crawl summary counters.
	PagesCrawled  int
	PagesStored   int
	FetchErrors   int
	ProcessErrors int

	// InternalLinks is the sorted same-domain link set of the run.
	InternalLinks []string
}

// GetCrawlHistory retrieves crawl records for a domain, newest first.
func (cdb *CrawlDB) GetCrawlHistory(ctx context.Context, domain string) ([]CrawlRecord, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT id, domain, seed_url, started_at, duration_ms, pages_crawled, pages_stored, fetch_errors, process_errors, internal_links
	FROM crawls
	WHERE domain = ?
	ORDER BY started_at DESC, id DESC`, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawl history: %w", err)
	}
	defer rows.Close()

	var records []CrawlRecord
	for rows.Next() {
		var rec CrawlRecord
		var startedAt string
		var durationMS int64
		var linksJSON sql.NullString

		if err := rows.Scan(
			&rec.ID,
			&rec.Domain,
			&rec.SeedURL,
			&startedAt,
			&durationMS,
			&rec.PagesCrawled,
			&rec.PagesStored,
			&rec.FetchErrors,
			&rec.ProcessErrors,
			&linksJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan crawl record: %w", err)
		}

		rec.StartedAt = parseTimestamp(startedAt)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if linksJSON.Valid && linksJSON.String != "" {
			if err := json.Unmarshal([]byte(linksJSON.String), &rec.InternalLinks); err != nil {
				rec.InternalLinks = nil
			}
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetCrawlPages retrieves the documents stored by one crawl run.
func (cdb *CrawlDB) GetCrawlPages(ctx context.Context, crawlID int64) ([]model.PageDocument, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT url, text, text_length, scraped_at, domain
	FROM pages
	WHERE crawl_id = ?
	ORDER BY id`, crawlID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var docs []model.PageDocument
	for rows.Next() {
		var doc model.PageDocument
		var scrapedAt string

		if err := rows.Scan(&doc.URL, &doc.Text, &doc.TextLength, &scrapedAt, &doc.Domain); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		doc.ScrapedAt = parseTimestamp(scrapedAt)
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// ListDomains returns every domain with at least one stored crawl.
func (cdb *CrawlDB) ListDomains(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT DISTINCT domain FROM crawls
	ORDER BY domain`)
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
	return time.Time{}
}
