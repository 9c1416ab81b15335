package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sitesnap/internal/model"
)

// TextWriter outputs the plain-text internal-links listing: two total
// lines followed by every discovered same-domain URL, one per line. The
// format is stable so the file diffs cleanly between crawl runs.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the internal-links listing.
func (w *TextWriter) Write(summary *model.CrawlSummary) (int, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Total links found: %d\n", len(summary.InternalLinks))
	fmt.Fprintf(&b, "Total pages stored: %d\n\n", summary.PagesStored)
	for _, link := range summary.InternalLinks {
		b.WriteString(link)
		b.WriteByte('\n')
	}

	return w.output.Write([]byte(b.String()))
}
