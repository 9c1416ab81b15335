package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/sitesnap/internal/model"
)

// MarkdownWriter outputs the crawl summary in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// maxLinks caps the listed internal links. 0 lists everything.
	maxLinks int
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMaxLinks caps the number of internal links listed in the document.
func WithMaxLinks(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.maxLinks = n
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the crawl summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounters(md, summary)
	w.writeLinks(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the document header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Domain", "`" + summary.Domain + "`"},
			{"Seed URL", "`" + summary.SeedURL + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration.String()},
		},
	})
	md.PlainText("")
}

// writeCounters writes the per-run counters.
func (w *MarkdownWriter) writeCounters(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Count"},
		Rows: [][]string{
			{"Pages crawled", strconv.Itoa(summary.PagesCrawled)},
			{"Pages stored", strconv.Itoa(summary.PagesStored)},
			{"Internal links", strconv.Itoa(len(summary.InternalLinks))},
			{"Fetch errors", strconv.Itoa(summary.FetchErrors)},
			{"Process errors", strconv.Itoa(summary.ProcessErrors)},
		},
	})
	md.PlainText("")
}

// writeLinks writes the internal links section, truncated to maxLinks
// when a cap is configured.
func (w *MarkdownWriter) writeLinks(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Internal Links")
	md.PlainText("")

	links := summary.InternalLinks
	truncated := 0
	if w.maxLinks > 0 && len(links) > w.maxLinks {
		truncated = len(links) - w.maxLinks
		links = links[:w.maxLinks]
	}

	if len(links) == 0 {
		md.PlainText("No internal links discovered.")
		return
	}

	items := make([]string, 0, len(links))
	for _, link := range links {
		items = append(items, "`"+link+"`")
	}
	md.BulletList(items...)

	if truncated > 0 {
		md.PlainText("")
		md.PlainTextf("... and %d more.", truncated)
	}
}
