package crawler

import (
	"bytes"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/sitesnap/internal/model"
	"github.com/nao1215/sitesnap/internal/urlnorm"
)

// ignoredSchemes are link schemes discarded before normalization.
// The normalizer would reject them anyway; filtering here keeps the
// rejection explicit and cheap.
var ignoredSchemes = map[string]bool{
	"mailto":     true,
	"javascript": true,
	"tel":        true,
	"data":       true,
}

// videoHosts are known video-hosting domains. A link whose host equals one
// of these (or a subdomain of one) is classified as external-video and
// routed to the transcript enricher.
var videoHosts = []string{
	"youtube.com",
	"youtu.be",
	"youtube-nocookie.com",
	"vimeo.com",
}

// Page is a parsed HTML page.
//
// Design decision: We wrap goquery rather than exposing it because:
//  1. Callers only need link extraction and text extraction
//  2. The wrapper enforces that text extraction works on a clone and
//     never mutates the tree link extraction reads
//  3. Swapping the parsing library stays a one-package change
type Page struct {
	doc *goquery.Document
}

// ParsePage parses raw HTML into a Page. goquery tolerates malformed
// markup the way browsers do, so parse errors are rare and indicate
// genuinely unreadable input.
func ParsePage(body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &Page{doc: doc}, nil
}

// ExtractLinks returns the set of normalized outbound links of the page,
// each classified against baseHost. Relative references resolve against a
// <base href> element when present, otherwise against pageURL.
//
// Candidate sources are a/area/link href attributes and iframe/frame src
// attributes. Duplicate targets are coalesced; the result is sorted by URL
// so extraction is deterministic.
func (p *Page) ExtractLinks(pageURL, baseHost string) []model.Link {
	base := p.effectiveBase(pageURL)

	seen := make(map[string]model.LinkKind)
	collect := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		if u, err := url.Parse(raw); err == nil && ignoredSchemes[strings.ToLower(u.Scheme)] {
			return
		}
		normalized := urlnorm.NormalizeWithBase(raw, base)
		if normalized == "" {
			return
		}
		if _, ok := seen[normalized]; ok {
			return
		}
		seen[normalized] = classify(normalized, baseHost)
	}

	p.doc.Find("a[href], area[href], link[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			collect(href)
		}
	})
	p.doc.Find("iframe[src], frame[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			collect(src)
		}
	})

	// Image sources are normalized but never enter the result set.
	// Image indexing is a reserved extension point; the traversal below
	// keeps the candidate handling in place without producing output.
	p.doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			_ = urlnorm.NormalizeWithBase(strings.TrimSpace(src), base)
		}
	})

	links := make([]model.Link, 0, len(seen))
	for u, kind := range seen {
		links = append(links, model.Link{URL: u, Kind: kind})
	}
	sort.Slice(links, func(i, j int) bool { return links[i].URL < links[j].URL })
	return links
}

// effectiveBase returns the URL relative references resolve against:
// the page's <base href> when present, otherwise the page URL itself.
// A relative <base href> resolves against the page URL first.
func (p *Page) effectiveBase(pageURL string) *url.URL {
	pageBase, err := url.Parse(pageURL)
	if err != nil {
		pageBase = nil
	}

	href, ok := p.doc.Find("base[href]").First().Attr("href")
	if !ok {
		return pageBase
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return pageBase
	}

	u, err := url.Parse(href)
	if err != nil {
		return pageBase
	}
	if u.IsAbs() || pageBase == nil {
		return u
	}
	return pageBase.ResolveReference(u)
}

// classify tags a normalized link by comparing its host against baseHost
// and the known video-hosting domains.
func classify(normalized, baseHost string) model.LinkKind {
	host := urlnorm.Host(normalized)
	if host == strings.ToLower(baseHost) {
		return model.LinkSameDomain
	}
	if isVideoHost(host) {
		return model.LinkExternalVideo
	}
	return model.LinkExternal
}

// isVideoHost reports whether host is a known video-hosting domain or a
// subdomain of one (www.youtube.com, m.youtube.com, player.vimeo.com).
func isVideoHost(host string) bool {
	for _, v := range videoHosts {
		if host == v || strings.HasSuffix(host, "."+v) {
			return true
		}
	}
	return false
}
