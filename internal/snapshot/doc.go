// Package snapshot persists crawled page documents as a JSON array,
// transparently gzip-compressed when the target filename carries a .gz
// suffix. A snapshot written by Save is always readable by Load, and the
// uncompressed form stays hand-inspectable.
package snapshot
