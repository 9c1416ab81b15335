package model

import "time"

// CrawlSummary is the final accounting of a single crawl. It feeds the
// link report writers and the history database, and is returned to the
// caller even when snapshot persistence fails.
type CrawlSummary struct {
	// Domain is the configured base domain of the crawl.
	Domain string `json:"domain"`

	// SeedURL is the normalized seed the crawl started from.
	SeedURL string `json:"seed_url"`

	// StartedAt is the UTC time the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock time the crawl took.
	Duration time.Duration `json:"duration"`

	// PagesCrawled counts dequeued URLs that were attempted, including
	// failures. The page cap bounds this number.
	PagesCrawled int `json:"pages_crawled"`

	// PagesStored counts pages that produced a PageDocument.
	PagesStored int `json:"pages_stored"`

	// FetchErrors counts pages abandoned due to transport failures.
	FetchErrors int `json:"fetch_errors"`

	// ProcessErrors counts pages abandoned due to parse or extraction
	// failures after a successful fetch.
	ProcessErrors int `json:"process_errors"`

	// InternalLinks holds every distinct same-domain link discovered
	// during the crawl, lexicographically sorted. It is a superset of the
	// stored pages when the page cap truncates traversal.
	InternalLinks []string `json:"internal_links"`
}
