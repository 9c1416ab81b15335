// Package log provides slog handler helpers for sitesnap.
//
// Crawl logging routinely carries page text and long URL lists as
// attributes. TrimHandler wraps any slog.Handler and caps oversized string
// attribute values so that a single large page cannot flood the log output,
// while leaving the underlying handler free to format records as text or
// JSON.
package log
