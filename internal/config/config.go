package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBaseDomain is the site crawled when no --domain flag is given.
	// Only links whose host matches this domain's host are followed.
	DefaultBaseDomain = "https://pantelis.github.io"

	// DefaultTimeout bounds each HTTP request. Ten seconds is generous for
	// static pages while keeping a stuck server from stalling the crawl.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxPages of 0 means no page cap: the crawl runs until the
	// frontier is exhausted. Users cap runaway crawls via --max-pages.
	DefaultMaxPages = 0

	// DefaultBatchSize is the number of concurrent crawls when multiple
	// seeds are given. Each crawl is single-threaded internally, so this
	// only bounds cross-seed parallelism.
	DefaultBatchSize = 4

	// DefaultMaxBodySize limits the response body size read per page.
	// 5MB is ample for HTML while preventing memory exhaustion from
	// unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies sitesnap in HTTP requests. A descriptive
	// User-Agent lets site operators identify crawler traffic in their logs.
	DefaultUserAgent = "sitesnap/1.0 (+https://github.com/nao1215/sitesnap)"

	// DefaultOutputFile is the default snapshot path. The .gz suffix
	// selects the compressed encoding.
	DefaultOutputFile = "scraped_pages.json.gz"

	// DefaultLinksFile is the default path of the plain-text link report.
	DefaultLinksFile = "internal_links.txt"

	// DefaultTranscriptLang is the caption language requested from the
	// transcript service.
	DefaultTranscriptLang = "en"

	// AppName is the application name used for XDG directory paths.
	AppName = "sitesnap"
)

// Config holds all options for a sitesnap run. It is populated from CLI
// flags and the optional .sitesnap file, then passed through the
// application via dependency injection rather than global state.
type Config struct {
	// Seeds is the list of seed URLs to crawl. At least one is required.
	Seeds []string

	// BaseDomain scopes the crawl: only links whose normalized host equals
	// this domain's host are followed.
	BaseDomain string

	// MaxPages caps the number of pages attempted per crawl.
	// Zero means no cap.
	MaxPages int

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// OutputFile is the snapshot destination. A .gz suffix selects the
	// gzip-compressed encoding, anything else plain JSON.
	OutputFile string

	// LinksFile is the destination of the link report side file.
	LinksFile string

	// MarkdownReport switches the link report from plain text to Markdown.
	MarkdownReport bool

	// Transcripts enables video transcript enrichment for external-video
	// links. Disabled by default because it contacts a third-party service.
	Transcripts bool

	// TranscriptLang is the preferred caption language.
	TranscriptLang string

	// BatchSize bounds concurrent crawls when multiple seeds are given.
	BatchSize int

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// ConfigFilePath is an explicit path to the .sitesnap file. When
	// empty, the current directory and then the home directory are searched.
	ConfigFilePath string

	// SiteConfigs holds per-domain overrides loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory of the crawl-history SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveHistory controls whether crawl summaries are recorded in the
	// history database.
	SaveHistory bool
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero values
// because most defaults are non-zero (timeout, user agent, paths). The
// constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		BaseDomain:     DefaultBaseDomain,
		MaxPages:       DefaultMaxPages,
		Timeout:        DefaultTimeout,
		MaxBodySize:    DefaultMaxBodySize,
		UserAgent:      DefaultUserAgent,
		OutputFile:     DefaultOutputFile,
		LinksFile:      DefaultLinksFile,
		TranscriptLang: DefaultTranscriptLang,
		BatchSize:      DefaultBatchSize,
		DBDir:          XDGDataDir(),
		SaveHistory:    true,
	}
}

// XDGDataDir returns the XDG data directory for sitesnap.
// On Linux: ~/.local/share/sitesnap
// On macOS: ~/Library/Application Support/sitesnap
// On Windows: %LOCALAPPDATA%\sitesnap
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid. It returns a specific
// sentinel error describing the first problem found; fixing one error
// often makes later ones irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.BaseDomain == "" {
		return ErrNoBaseDomain
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.OutputFile == "" {
		return ErrNoOutputFile
	}
	return nil
}

// Compressed reports whether the output path selects the gzip encoding.
func (c *Config) Compressed() bool {
	return strings.HasSuffix(c.OutputFile, ".gz")
}
