package urlnorm

import (
	"net/url"
	"strings"
)

// Normalize canonicalizes rawURL into its comparable form.
// It returns the empty string when the URL is malformed, has no host, or
// uses a non-http(s) scheme.
//
// The canonical form is scheme://host[:port]path[?query] where:
//   - the scheme defaults to https when absent and is lowercased
//   - the host is lowercased and default ports (80/http, 443/https) are
//     stripped
//   - the fragment is removed
//   - an empty path becomes "/" and non-root trailing slashes are stripped
//   - the query string is kept verbatim
func Normalize(rawURL string) string {
	return NormalizeWithBase(rawURL, nil)
}

// NormalizeWithBase resolves rawURL against base per standard relative-URL
// resolution rules and then normalizes the result. A nil base behaves like
// Normalize. Relative, scheme-relative, and fragment-only references all
// resolve against base before canonicalization.
func NormalizeWithBase(rawURL string, base *url.URL) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "" && scheme != "http" && scheme != "https" {
		return ""
	}
	if scheme == "" {
		scheme = "https"
	}

	host := strings.ToLower(u.Host)
	if host == "" {
		return ""
	}
	switch scheme {
	case "http":
		host = strings.TrimSuffix(host, ":80")
	case "https":
		host = strings.TrimSuffix(host, ":443")
	}

	path := u.EscapedPath()
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(path)
	if u.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	return b.String()
}

// Domain returns the canonical scheme://host form of rawURL, the key a
// crawl is recorded under. A bare host without a scheme defaults to
// https; any path, query, or fragment is dropped. It returns the empty
// string when no host can be parsed or the scheme is not http(s).
func Domain(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if u, err := url.Parse(rawURL); err != nil || (u.Scheme == "" && u.Host == "") {
		rawURL = "https://" + rawURL
	}

	normalized := Normalize(rawURL)
	if normalized == "" {
		return ""
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Host returns the lowercased host (including any non-default port) of a
// URL string, or the empty string when the URL cannot be parsed. It is the
// comparison key used for same-domain classification.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
