package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/sitesnap/internal/config"
	"github.com/nao1215/sitesnap/internal/database"
	"github.com/nao1215/sitesnap/internal/urlnorm"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command lists past crawls recorded in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "Show crawl history for a domain",
		Long: `History lists past crawl runs recorded in the local database.

Each crawl performed with 'sitesnap crawl' (unless --no-history was given)
stores its summary and pages, so runs can be compared after the snapshot
files themselves are gone.

Examples:
  # Show crawl history for a domain
  sitesnap history example.com

  # List every domain with recorded crawls
  sitesnap history --list-domains`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-domains", "L", false,
		"List all domains with recorded crawls")

	return cmd
}

// historyDomain returns the database key a history lookup queries for.
// Crawls are recorded under the canonical scheme://host form, so a bare
// host argument like "example.com" gets the same https:// prefix the
// crawl path stores. An argument that yields no host is queried verbatim.
func historyDomain(arg string) string {
	if d := urlnorm.Domain(arg); d != "" {
		return d
	}
	return arg
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listDomains, err := cmd.Flags().GetBool("list-domains")
	if err != nil {
		return err
	}

	var domain string
	if !listDomains {
		if len(args) == 0 {
			return errors.New("domain is required (use --list-domains to see recorded domains)")
		}
		domain = historyDomain(args[0])
	}

	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no crawl history found (run 'sitesnap crawl' first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if listDomains {
		domains, err := db.ListDomains(ctx)
		if err != nil {
			return fmt.Errorf("failed to list domains: %w", err)
		}
		if len(domains) == 0 {
			fmt.Fprintln(out, "No crawls recorded.")
			return nil
		}
		for _, d := range domains {
			fmt.Fprintln(out, d)
		}
		return nil
	}

	records, err := db.GetCrawlHistory(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to read crawl history: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintf(out, "No crawls recorded for %s.\n", domain)
		return nil
	}

	fmt.Fprintf(out, "Crawl history for %s (%d runs):\n\n", domain, len(records))
	for _, rec := range records {
		fmt.Fprintf(out, "[%d] %s\n", rec.ID, rec.StartedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "    seed: %s\n", rec.SeedURL)
		fmt.Fprintf(out, "    %d crawled, %d stored, %d links, %d errors, took %s\n",
			rec.PagesCrawled,
			rec.PagesStored,
			len(rec.InternalLinks),
			rec.FetchErrors+rec.ProcessErrors,
			rec.Duration.Round(time.Millisecond),
		)
	}

	return nil
}
