package main

import (
	"fmt"

	"github.com/nao1215/sitesnap/internal/snapshot"
	"github.com/spf13/cobra"
)

// previewLength is the number of characters of page text shown per page.
const previewLength = 120

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <snapshot-file>",
		Short: "Summarize a crawl snapshot file",
		Long: `Inspect reads a snapshot written by 'sitesnap crawl' and prints its
contents: page count, total extracted text, and a preview of each page.

Compression is detected from the file suffix, so both .json and .json.gz
snapshots are supported.

Examples:
  # Summarize the default snapshot
  sitesnap inspect scraped_pages.json.gz

  # Show full page URLs without previews
  sitesnap inspect --urls-only scraped_pages.json.gz`,
		Args: cobra.ExactArgs(1),
		RunE: runInspectCmd,
	}

	cmd.Flags().Bool("urls-only", false,
		"List page URLs without text previews")

	return cmd
}

// runInspectCmd executes the inspect command.
func runInspectCmd(cmd *cobra.Command, args []string) error {
	urlsOnly, err := cmd.Flags().GetBool("urls-only")
	if err != nil {
		return err
	}

	docs, err := snapshot.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	out := cmd.OutOrStdout()

	totalText := 0
	for _, doc := range docs {
		totalText += doc.TextLength
	}

	fmt.Fprintf(out, "Snapshot: %s\n", args[0])
	fmt.Fprintf(out, "Pages: %d\n", len(docs))
	fmt.Fprintf(out, "Total text: %d characters\n\n", totalText)

	for i, doc := range docs {
		if urlsOnly {
			fmt.Fprintf(out, "%s\n", doc.URL)
			continue
		}
		fmt.Fprintf(out, "[%d] %s\n", i+1, doc.URL)
		fmt.Fprintf(out, "    scraped: %s, %d characters\n", doc.ScrapedAt.Format("2006-01-02 15:04:05 MST"), doc.TextLength)
		fmt.Fprintf(out, "    %s\n", preview(doc.Text))
	}

	return nil
}

// preview returns the head of a page's text, truncated on a rune
// boundary.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}
