// Package main provides the entry point for the sitesnap CLI.
//
// sitesnap crawls a website breadth-first from a seed URL, extracts the
// visible text of every same-domain page, and stores the result as a
// compressed JSON snapshot plus a plain-text listing of the internal
// links it discovered.
//
// Usage:
//
//	sitesnap crawl https://example.com
//	sitesnap crawl --domain example.com --max-pages 100 seed1 seed2
//
// See --help for all available options.
package main

// main is the entry point for sitesnap.
func main() {
	Execute()
}
