package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nao1215/sitesnap/internal/config"
	"github.com/nao1215/sitesnap/internal/crawler"
	"github.com/nao1215/sitesnap/internal/database"
	"github.com/nao1215/sitesnap/internal/log"
	"github.com/nao1215/sitesnap/internal/model"
	"github.com/nao1215/sitesnap/internal/report"
	"github.com/nao1215/sitesnap/internal/snapshot"
	"github.com/nao1215/sitesnap/internal/transcript"
	"github.com/nao1215/sitesnap/internal/urlnorm"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl a website and snapshot its text content",
		Long: `Crawl visits a website breadth-first starting from the seed URL.

For every page on the base domain it extracts the visible text (headers,
footers, navigation, and scripts removed) and records all outbound links.
Only same-domain links are followed; external links are classified and
listed but never fetched. When finished, the crawl writes:

- a JSON snapshot of every page's text (gzip-compressed for .gz paths)
- a plain-text listing of all discovered internal links

Examples:
  # Crawl a site, following links within its domain
  sitesnap crawl https://example.com

  # Cap the crawl at 100 pages
  sitesnap crawl --max-pages 100 https://example.com

  # Crawl several independent sites concurrently
  sitesnap crawl --batch 4 https://a.example https://b.example

  # Scope the crawl to a domain different from the seed's
  sitesnap crawl --domain docs.example.com https://docs.example.com/intro

  # Enrich pages that link to videos with caption transcripts
  sitesnap crawl --transcripts https://lectures.example.com

Configuration file (.sitesnap) example:
  defaults:
    userAgent: "my-crawler/1.0"
  sites:
    example.com:
      maxPages: 50
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl scope flags
	cmd.Flags().StringP("domain", "d", config.DefaultBaseDomain,
		"Base domain to scope the crawl to (defaults to the seed's domain)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per seed (0 = unlimited)")

	// Transport flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls when multiple seeds are given")

	// Transcript flags
	cmd.Flags().Bool("transcripts", false,
		"Fetch caption transcripts for pages linking to videos")
	cmd.Flags().String("transcript-lang", config.DefaultTranscriptLang,
		"Caption language for transcript fetching")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Snapshot file path (.gz suffix enables compression)")
	cmd.Flags().String("links", config.DefaultLinksFile,
		"Internal-links report file path")
	cmd.Flags().BoolP("markdown", "m", false,
		"Write the link report as Markdown instead of plain text")
	cmd.Flags().Bool("no-history", false,
		"Skip recording the crawl in the history database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitesnap in current or home directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing partial crawl...")
		cancel()
	}()

	return runCrawl(ctx, cfg, cmd.Flags().Changed("domain"), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.BaseDomain, err = cmd.Flags().GetString("domain")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.Transcripts, err = cmd.Flags().GetBool("transcripts")
	if err != nil {
		return nil, err
	}

	cfg.TranscriptLang, err = cmd.Flags().GetString("transcript-lang")
	if err != nil {
		return nil, err
	}

	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.LinksFile, err = cmd.Flags().GetString("links")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// An explicitly specified path must exist; the default search is
	// allowed to come up empty.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	// Positional arguments are seed URLs. Without any, the base domain
	// itself is the seed.
	cfg.Seeds = args
	if len(cfg.Seeds) == 0 {
		cfg.Seeds = []string{cfg.BaseDomain}
	}

	return cfg, nil
}

// runCrawl executes the configured crawls.
func runCrawl(ctx context.Context, cfg *config.Config, domainFlagSet bool, logger *slog.Logger) error {
	logger.Info("starting crawl run",
		"seeds", cfg.Seeds,
		"maxPages", cfg.MaxPages,
		"batchSize", cfg.BatchSize,
		"transcripts", cfg.Transcripts,
	)

	// Open the history database. History is a convenience, not the
	// deliverable, so failure degrades to a warning.
	var db *database.CrawlDB
	if cfg.SaveHistory {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("history database unavailable, continuing without it", "error", err)
		} else {
			defer db.Close()
			logger.Info("history database opened", "dir", cfg.DBDir)
		}
	}

	client := &http.Client{Timeout: cfg.Timeout}

	var transcripts crawler.TranscriptFetcher
	if cfg.Transcripts {
		transcripts = transcript.NewClient(client,
			transcript.WithLanguage(cfg.TranscriptLang),
			transcript.WithLogger(logger),
		)
	}

	if len(cfg.Seeds) > 1 && cfg.BatchSize > 1 {
		return runBatchCrawl(ctx, cfg, client, transcripts, db, domainFlagSet, logger)
	}
	return runSequentialCrawl(ctx, cfg, client, transcripts, db, domainFlagSet, logger)
}

// baseDomainForSeed returns the domain a seed's crawl is scoped to.
// An explicit --domain wins; otherwise the seed's own domain is used, so
// batches of unrelated sites each stay within themselves. The result is
// canonicalized to scheme://host so the same key is stored in history
// regardless of how the domain was spelled or which crawl path ran.
func baseDomainForSeed(cfg *config.Config, seed string, domainFlagSet bool) string {
	if !domainFlagSet {
		if d := urlnorm.Domain(seed); d != "" {
			return d
		}
	}
	if d := urlnorm.Domain(cfg.BaseDomain); d != "" {
		return d
	}
	return cfg.BaseDomain
}

// newSpiderForSeed builds a Spider for one seed, applying per-site
// overrides from the configuration file. Extra options are appended last
// so callers can attach progress reporting.
func newSpiderForSeed(cfg *config.Config, client *http.Client, transcripts crawler.TranscriptFetcher, baseDomain string, logger *slog.Logger, extra ...crawler.SpiderOption) *crawler.Spider {
	site := cfg.SiteConfigs.GetSiteConfig(urlnorm.Host(urlnorm.Normalize(baseDomain)))

	maxPages := cfg.MaxPages
	if site.MaxPages > 0 {
		maxPages = site.MaxPages
	}
	userAgent := cfg.UserAgent
	if site.UserAgent != "" {
		userAgent = site.UserAgent
	}

	opts := []crawler.SpiderOption{
		crawler.WithMaxPages(maxPages),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithUserAgent(userAgent),
		crawler.WithLogger(logger),
	}
	if len(site.Headers) > 0 {
		opts = append(opts, crawler.WithHeaders(site.Headers))
	}
	if transcripts != nil {
		opts = append(opts, crawler.WithTranscripts(transcripts))
	}
	opts = append(opts, extra...)

	return crawler.NewSpider(client, baseDomain, opts...)
}

// runSequentialCrawl crawls seeds one at a time with per-page progress.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, client *http.Client, transcripts crawler.TranscriptFetcher, db *database.CrawlDB, domainFlagSet bool, logger *slog.Logger) error {
	multiSeed := len(cfg.Seeds) > 1

	for i, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		baseDomain := baseDomainForSeed(cfg, seed, domainFlagSet)
		spider := newSpiderForSeed(cfg, client, transcripts, baseDomain, logger,
			crawler.WithProgress(func(seq int, pageURL string, outcome crawler.Outcome) {
				fmt.Printf("[%d] %s (%s)\n", seq, pageURL, outcome)
			}))

		fmt.Printf("Crawling %s...\n", seed)
		startedAt := time.Now().UTC()

		res, err := spider.Crawl(ctx, seed)
		interrupted := err != nil
		if interrupted {
			fmt.Fprintf(os.Stderr, "Crawl interrupted for %s: %v (saving partial results)\n", seed, err)
		}

		summary := spider.Summary(res, seed)
		summary.StartedAt = startedAt
		summary.Duration = time.Since(startedAt)

		if err := persistCrawl(ctx, cfg, db, summary, res, seedOutputPath(cfg.OutputFile, i, multiSeed), seedLinksPath(cfg.LinksFile, i, multiSeed), logger); err != nil {
			return err
		}

		printSummary(summary)
		if interrupted {
			return ctx.Err()
		}
	}

	return nil
}

// runBatchCrawl crawls multiple seeds concurrently.
func runBatchCrawl(ctx context.Context, cfg *config.Config, client *http.Client, transcripts crawler.TranscriptFetcher, db *database.CrawlDB, domainFlagSet bool, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d seeds (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.BatchSize)
	startedAt := time.Now().UTC()

	// One spider per seed, each scoped to its own domain.
	bp := crawler.NewBatchProcessor(func(seed string) *crawler.Spider {
		return newSpiderForSeed(cfg, client, transcripts, baseDomainForSeed(cfg, seed, domainFlagSet), logger)
	}, cfg.BatchSize, logger)

	results := bp.ProcessSeeds(ctx, cfg.Seeds)

	var firstErr error
	for i, sr := range results {
		fmt.Printf("[%d/%d] Crawl finished: %s (%d pages)\n",
			i+1, len(results), sr.Seed, sr.Result.PagesStored)
		if sr.Err != nil {
			fmt.Fprintf(os.Stderr, "Crawl interrupted for %s: %v (saving partial results)\n", sr.Seed, sr.Err)
			if firstErr == nil {
				firstErr = sr.Err
			}
		}

		summary := &model.CrawlSummary{
			Domain:        baseDomainForSeed(cfg, sr.Seed, domainFlagSet),
			SeedURL:       urlnorm.Normalize(sr.Seed),
			StartedAt:     startedAt,
			Duration:      time.Since(startedAt),
			PagesCrawled:  sr.Result.PagesCrawled,
			PagesStored:   sr.Result.PagesStored,
			FetchErrors:   sr.Result.FetchErrors,
			ProcessErrors: sr.Result.ProcessErrors,
			InternalLinks: sr.Result.InternalLinks,
		}

		if err := persistCrawl(ctx, cfg, db, summary, sr.Result, seedOutputPath(cfg.OutputFile, i, true), seedLinksPath(cfg.LinksFile, i, true), logger); err != nil {
			return err
		}
	}

	fmt.Printf("\nBatch crawl completed in %s\n", time.Since(startedAt).Round(time.Millisecond))
	return firstErr
}

// persistCrawl writes the snapshot, the link report, and the history
// record for one finished crawl. Snapshot and report failures are fatal;
// history failures are logged and skipped.
func persistCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, summary *model.CrawlSummary, res *crawler.Result, outputPath, linksPath string, logger *slog.Logger) error {
	if err := snapshot.Save(outputPath, res.Documents); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	logger.Info("snapshot written", "path", outputPath, "pages", len(res.Documents))

	if err := writeLinkReport(cfg, summary, linksPath); err != nil {
		return fmt.Errorf("failed to write link report: %w", err)
	}
	logger.Info("link report written", "path", linksPath, "links", len(summary.InternalLinks))

	if db != nil {
		if _, err := db.SaveCrawl(ctx, summary, res.Documents); err != nil {
			logger.Error("failed to record crawl history", "domain", summary.Domain, "error", err)
		}
	}
	return nil
}

// writeLinkReport writes the internal-links report in the configured
// format.
func writeLinkReport(cfg *config.Config, summary *model.CrawlSummary, linksPath string) error {
	if dir := filepath.Dir(linksPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(linksPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	var w report.Writer
	if cfg.MarkdownReport {
		w = report.NewMarkdownWriter(f)
	} else {
		w = report.NewTextWriter(f)
	}
	if _, err := w.Write(summary); err != nil {
		return err
	}
	return nil
}

// printSummary prints the final crawl accounting to stdout.
func printSummary(summary *model.CrawlSummary) {
	fmt.Printf("\nCrawl of %s completed in %s\n", summary.Domain, summary.Duration.Round(time.Millisecond))
	fmt.Printf("  pages crawled:  %d\n", summary.PagesCrawled)
	fmt.Printf("  pages stored:   %d\n", summary.PagesStored)
	fmt.Printf("  internal links: %d\n", len(summary.InternalLinks))
	if summary.FetchErrors > 0 || summary.ProcessErrors > 0 {
		fmt.Printf("  errors:         %d fetch, %d process\n", summary.FetchErrors, summary.ProcessErrors)
	}
	fmt.Println()
}

// seedOutputPath derives the snapshot path for the i-th seed. Single-seed
// runs use the configured path unchanged; multi-seed runs get a numbered
// suffix so outputs never collide.
func seedOutputPath(path string, i int, multiSeed bool) string {
	if !multiSeed {
		return path
	}
	return numberedPath(path, i+1)
}

// seedLinksPath derives the link report path for the i-th seed.
func seedLinksPath(path string, i int, multiSeed bool) string {
	if !multiSeed {
		return path
	}
	return numberedPath(path, i+1)
}

// numberedPath inserts "-<n>" before the path's extension chain, so
// "pages.json.gz" becomes "pages-2.json.gz".
func numberedPath(path string, n int) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	ext := ""
	if strings.HasSuffix(base, ".gz") {
		base = strings.TrimSuffix(base, ".gz")
		ext = ".gz"
	}
	if e := filepath.Ext(base); e != "" {
		base = strings.TrimSuffix(base, e)
		ext = e + ext
	}

	return filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, n, ext))
}
