package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// nonContentSelector lists the elements removed before text extraction.
// These carry navigation, styling, and metadata rather than page content.
const nonContentSelector = "header, footer, script, style, nav, noscript, meta, link"

// VisibleText returns the page's human-readable text: text nodes of the
// body subtree (or the whole document when there is no body) joined with
// single spaces, with repeated whitespace collapsed and the result
// NFC-normalized.
//
// Extraction works on a clone of the parse tree. The removal of
// non-content elements must never be observable by ExtractLinks, which
// reads the same page; cloning makes the two extractions order-independent.
// An empty result is a valid zero-length text, not an error.
func (p *Page) VisibleText() string {
	clone := goquery.CloneDocument(p.doc)
	clone.Find(nonContentSelector).Remove()

	root := clone.Find("body")
	nodes := root.Nodes
	if len(nodes) == 0 {
		nodes = clone.Selection.Nodes
	}

	var b strings.Builder
	for _, n := range nodes {
		collectText(n, &b)
	}

	return norm.NFC.String(strings.Join(strings.Fields(b.String()), " "))
}

// collectText appends the data of every text node under n, separated by
// spaces so adjacent elements don't run together.
func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
