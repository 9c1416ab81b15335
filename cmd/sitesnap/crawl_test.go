package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitesnap/internal/config"
	"github.com/nao1215/sitesnap/internal/database"
	"github.com/nao1215/sitesnap/internal/log"
	"github.com/nao1215/sitesnap/internal/snapshot"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [seed-url...]" {
			t.Errorf("expected use 'crawl [seed-url...]', got %q", cmd.Use)
		}
	})

	t.Run("has short and long descriptions", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
	})

	t.Run("has domain flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("domain")
		if flag == nil {
			t.Fatal("expected domain flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultBaseDomain {
			t.Errorf("expected default %q, got %q", config.DefaultBaseDomain, flag.DefValue)
		}
	})

	t.Run("has max-pages flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("max-pages")
		if flag == nil {
			t.Fatal("expected max-pages flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"output", "links", "markdown", "no-history"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has transcript flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"transcripts", "transcript-lang"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestBuildConfig tests config construction from flags.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.BaseDomain != config.DefaultBaseDomain {
			t.Errorf("expected default base domain, got %q", cfg.BaseDomain)
		}
		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("expected default max pages, got %d", cfg.MaxPages)
		}
		if !cfg.SaveHistory {
			t.Error("expected history enabled by default")
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://example.com" {
			t.Errorf("expected seed from args, got %v", cfg.Seeds)
		}
	})

	t.Run("no args uses base domain as seed", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"--domain", "https://example.com"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://example.com" {
			t.Errorf("expected base domain as seed, got %v", cfg.Seeds)
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		args := []string{
			"--max-pages", "25",
			"--timeout", "5s",
			"--output", "out.json",
			"--no-history",
			"--transcripts",
		}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxPages != 25 {
			t.Errorf("expected max pages 25, got %d", cfg.MaxPages)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("expected 5s timeout, got %v", cfg.Timeout)
		}
		if cfg.OutputFile != "out.json" {
			t.Errorf("expected output out.json, got %q", cfg.OutputFile)
		}
		if cfg.SaveHistory {
			t.Error("expected history disabled")
		}
		if !cfg.Transcripts {
			t.Error("expected transcripts enabled")
		}
	})

	t.Run("explicit missing config file fails", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"--config", missing}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		if _, err := buildConfig(cmd, []string{"https://example.com"}); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

// TestBaseDomainForSeed tests per-seed domain scoping.
func TestBaseDomainForSeed(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.BaseDomain = "https://configured.example"

	t.Run("explicit domain flag wins", func(t *testing.T) {
		t.Parallel()
		got := baseDomainForSeed(cfg, "https://seed.example/page", true)
		if got != "https://configured.example" {
			t.Errorf("expected configured domain, got %q", got)
		}
	})

	t.Run("derives domain from seed when flag unset", func(t *testing.T) {
		t.Parallel()
		got := baseDomainForSeed(cfg, "https://seed.example/page", false)
		if got != "https://seed.example" {
			t.Errorf("expected seed domain, got %q", got)
		}
	})

	t.Run("falls back to configured domain for bad seeds", func(t *testing.T) {
		t.Parallel()
		got := baseDomainForSeed(cfg, "mailto:a@b.c", false)
		if got != "https://configured.example" {
			t.Errorf("expected configured domain fallback, got %q", got)
		}
	})

	t.Run("bare domain flag is canonicalized", func(t *testing.T) {
		t.Parallel()
		bare := config.NewConfig()
		bare.BaseDomain = "example.com"
		got := baseDomainForSeed(bare, "https://example.com/page", true)
		if got != "https://example.com" {
			t.Errorf("expected scheme-prefixed domain key, got %q", got)
		}
	})

	t.Run("domain key strips paths", func(t *testing.T) {
		t.Parallel()
		withPath := config.NewConfig()
		withPath.BaseDomain = "https://example.com/docs"
		got := baseDomainForSeed(withPath, "https://example.com/docs/intro", true)
		if got != "https://example.com" {
			t.Errorf("expected host-only domain key, got %q", got)
		}
	})
}

// TestNumberedPath tests multi-seed output path derivation.
func TestNumberedPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		n    int
		want string
	}{
		{"compressed snapshot", "scraped_pages.json.gz", 2, "scraped_pages-2.json.gz"},
		{"plain snapshot", "pages.json", 1, "pages-1.json"},
		{"text report", "internal_links.txt", 3, "internal_links-3.txt"},
		{"no extension", "report", 1, "report-1"},
		{"with directory", filepath.Join("out", "pages.json.gz"), 2, filepath.Join("out", "pages-2.json.gz")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := numberedPath(tt.path, tt.n); got != tt.want {
				t.Errorf("numberedPath(%q, %d) = %q, want %q", tt.path, tt.n, got, tt.want)
			}
		})
	}
}

// TestRunCrawl tests the end-to-end crawl flow against a local server.
func TestRunCrawl(t *testing.T) {
	t.Parallel()

	newSite := func(t *testing.T) *httptest.Server {
		t.Helper()
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><h1>Home</h1><a href="/about">About</a></body></html>`)) //nolint:errcheck
		})
		mux.HandleFunc("/about", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><p>About page</p></body></html>`)) //nolint:errcheck
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)
		return server
	}

	t.Run("single seed writes snapshot report and history", func(t *testing.T) {
		t.Parallel()

		server := newSite(t)
		tmpDir := t.TempDir()

		cfg := config.NewConfig()
		cfg.Seeds = []string{server.URL}
		cfg.BaseDomain = server.URL
		cfg.OutputFile = filepath.Join(tmpDir, "pages.json.gz")
		cfg.LinksFile = filepath.Join(tmpDir, "links.txt")
		cfg.DBDir = filepath.Join(tmpDir, "db")
		cfg.BatchSize = 1
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}

		logger := log.NewLogger(os.Stderr, false)
		if err := runCrawl(context.Background(), cfg, true, logger); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		docs, err := snapshot.Load(cfg.OutputFile)
		if err != nil {
			t.Fatalf("failed to load snapshot: %v", err)
		}
		if len(docs) != 2 {
			t.Fatalf("expected 2 documents, got %d", len(docs))
		}
		if docs[0].Text != "Home About" {
			t.Errorf("unexpected first page text %q", docs[0].Text)
		}

		raw, err := os.ReadFile(cfg.LinksFile)
		if err != nil {
			t.Fatalf("failed to read links file: %v", err)
		}
		content := string(raw)
		if !strings.HasPrefix(content, "Total links found: 1\nTotal pages stored: 2\n\n") {
			t.Errorf("unexpected report header:\n%s", content)
		}
		if !strings.Contains(content, server.URL+"/about") {
			t.Errorf("expected about link in report:\n%s", content)
		}

		db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("expected history database: %v", err)
		}
		defer db.Close()
		records, err := db.GetCrawlHistory(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("failed to read history: %v", err)
		}
		if len(records) != 1 || records[0].PagesStored != 2 {
			t.Errorf("expected 1 history record with 2 pages, got %+v", records)
		}
	})

	t.Run("markdown report format", func(t *testing.T) {
		t.Parallel()

		server := newSite(t)
		tmpDir := t.TempDir()

		cfg := config.NewConfig()
		cfg.Seeds = []string{server.URL}
		cfg.BaseDomain = server.URL
		cfg.OutputFile = filepath.Join(tmpDir, "pages.json")
		cfg.LinksFile = filepath.Join(tmpDir, "links.md")
		cfg.MarkdownReport = true
		cfg.SaveHistory = false
		cfg.BatchSize = 1
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}

		logger := log.NewLogger(os.Stderr, false)
		if err := runCrawl(context.Background(), cfg, true, logger); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		raw, err := os.ReadFile(cfg.LinksFile)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(raw), "# Crawl Report") {
			t.Errorf("expected markdown report, got:\n%s", raw)
		}
	})

	t.Run("multiple seeds write numbered outputs", func(t *testing.T) {
		t.Parallel()

		first := newSite(t)
		second := newSite(t)
		tmpDir := t.TempDir()

		cfg := config.NewConfig()
		cfg.Seeds = []string{first.URL, second.URL}
		cfg.OutputFile = filepath.Join(tmpDir, "pages.json.gz")
		cfg.LinksFile = filepath.Join(tmpDir, "links.txt")
		cfg.SaveHistory = false
		cfg.BatchSize = 2
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}

		logger := log.NewLogger(os.Stderr, false)
		if err := runCrawl(context.Background(), cfg, false, logger); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i := 1; i <= 2; i++ {
			path := filepath.Join(tmpDir, fmt.Sprintf("pages-%d.json.gz", i))
			docs, err := snapshot.Load(path)
			if err != nil {
				t.Fatalf("failed to load snapshot %d: %v", i, err)
			}
			if len(docs) != 2 {
				t.Errorf("snapshot %d: expected 2 documents, got %d", i, len(docs))
			}
		}
	})
}
