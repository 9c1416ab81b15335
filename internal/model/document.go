package model

import (
	"time"
	"unicode/utf8"
)

// PageDocument is the stored record for one successfully crawled page.
// It is immutable after creation and appended to the snapshot in crawl
// (breadth-first discovery) order.
//
// Design decision: TextLength is stored redundantly even though it can be
// recomputed from Text because:
//  1. It makes the snapshot file self-describing for downstream consumers
//  2. It allows quick inspection without decoding the full text
//  3. The original collection format carried it, and load(save(x)) == x
//     requires preserving every structured field
type PageDocument struct {
	// URL is the canonical (normalized) URL of the page.
	URL string `json:"url"`

	// Text is the extracted visible text of the page, or a video
	// transcript when enrichment replaced it.
	Text string `json:"text"`

	// TextLength is the character (rune) count of Text.
	TextLength int `json:"text_length"`

	// ScrapedAt is the UTC time the page was processed.
	ScrapedAt time.Time `json:"scraped_at"`

	// Domain is the configured base domain the crawl was scoped to.
	Domain string `json:"domain"`
}

// NewPageDocument creates a PageDocument for the given page.
// The timestamp is taken at call time and stored in UTC.
func NewPageDocument(url, text, domain string) PageDocument {
	return PageDocument{
		URL:        url,
		Text:       text,
		TextLength: utf8.RuneCountInString(text),
		ScrapedAt:  time.Now().UTC(),
		Domain:     domain,
	}
}
