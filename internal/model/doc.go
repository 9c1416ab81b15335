// Package model defines the core data types shared across sitesnap.
//
// The types here are intentionally plain: fixed-field structs with typed
// members rather than open-ended maps, so that the snapshot file format and
// the database schema stay stable and reviewable.
//
//   - PageDocument: one stored page (URL, extracted text, metadata)
//   - Link / LinkKind: a normalized outbound link and its classification
//   - CrawlSummary: the final accounting of a single crawl
package model
