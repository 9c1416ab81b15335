// Package urlnorm canonicalizes URLs so that semantically equivalent
// references compare as byte-identical strings.
//
// The normalizer is pure and idempotent: it never performs I/O, and
// normalizing an already-normalized URL returns the same string. Non-web
// schemes (mailto, javascript, tel, data, ...) and malformed input
// normalize to the empty string, which callers treat as "absent" and
// silently drop rather than report as an error.
package urlnorm
