package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/nao1215/sitesnap/internal/model"
	"github.com/nao1215/sitesnap/internal/urlnorm"
)

// Spider defaults. These mirror the config package but are owned here so
// the crawl engine works standalone in tests.
const (
	defaultMaxBodySize = 5 * 1024 * 1024 // 5MB
	defaultUserAgent   = "sitesnap/1.0 (+https://github.com/nao1215/sitesnap)"
)

// Outcome is the per-page processing result. The crawl loop inspects it to
// decide between storing a document and counting a failure; failures are
// always local and never abort the crawl.
type Outcome int

const (
	// OutcomeStored means the page produced a PageDocument.
	OutcomeStored Outcome = iota

	// OutcomeFetchFailed means the transport failed (connection error,
	// timeout, or non-2xx status). The page is abandoned without retry.
	OutcomeFetchFailed

	// OutcomeProcessFailed means the fetch succeeded but parsing or
	// extraction failed. Recovery is identical to a fetch failure; the
	// distinction exists for diagnostics.
	OutcomeProcessFailed
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeStored:
		return "stored"
	case OutcomeFetchFailed:
		return "fetch-failed"
	case OutcomeProcessFailed:
		return "process-failed"
	default:
		return "unknown"
	}
}

// TranscriptFetcher fetches a caption transcript for a video URL.
// An error means no transcript is available; the spider falls back to
// ordinary text extraction.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoURL string) (string, error)
}

// ProgressFunc is called once per attempted page with its dequeue sequence
// number, URL, and outcome.
type ProgressFunc func(seq int, pageURL string, outcome Outcome)

// Result holds everything a crawl produced. It is returned even when the
// crawl was cancelled, so partial results are never lost.
type Result struct {
	// Documents are the stored pages in breadth-first discovery order.
	Documents []model.PageDocument

	// InternalLinks is every distinct same-domain link discovered,
	// lexicographically sorted. It can exceed the stored pages when the
	// page cap truncates traversal.
	InternalLinks []string

	// PagesCrawled counts dequeued URLs that were attempted.
	PagesCrawled int

	// PagesStored counts pages that produced a document.
	PagesStored int

	// FetchErrors and ProcessErrors count abandoned pages by failure class.
	FetchErrors   int
	ProcessErrors int
}

// Spider crawls a single site breadth-first from a seed URL.
//
// It exclusively owns the visited set and the pending queue for the
// crawl's lifetime. The loop invariant: at the top of each iteration the
// queue contains only URLs not in the visited set, and a URL is marked
// visited before it is processed, so no URL is ever fetched twice.
//
// Design decision: Spider is single-threaded. One blocking fetch runs at a
// time and a page is fully processed before the next dequeue, which makes
// the stored order the breadth-first discovery order. A bounded worker
// pool would need an atomic check-and-mark on the visited set and explicit
// sequencing to preserve that order; BatchProcessor instead parallelizes
// across independent crawls.
type Spider struct {
	// client is the HTTP transport. Its Timeout bounds each request.
	client *http.Client

	// baseDomain is the configured base domain, stored on every document.
	baseDomain string

	// baseHost is the comparison key for same-domain classification.
	baseHost string

	// maxPages caps attempted pages. 0 means no cap.
	maxPages int

	// maxBodySize limits the response body size read per page.
	maxBodySize int64

	// userAgent identifies the crawler in requests.
	userAgent string

	// headers are extra headers set on every request.
	headers map[string]string

	// transcripts is the optional enricher for external-video links.
	transcripts TranscriptFetcher

	// progress, when set, is invoked once per attempted page.
	progress ProgressFunc

	logger *slog.Logger

	// Frontier state, reset at the start of each Crawl.
	visited  map[string]bool
	queued   map[string]bool
	queue    []string
	internal map[string]bool
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages caps the number of pages attempted. 0 disables the cap.
func WithMaxPages(n int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = n
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(n int64) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.maxBodySize = n
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithHeaders sets extra HTTP headers sent with every request.
func WithHeaders(headers map[string]string) SpiderOption {
	return func(s *Spider) {
		s.headers = headers
	}
}

// WithTranscripts enables video transcript enrichment.
func WithTranscripts(tf TranscriptFetcher) SpiderOption {
	return func(s *Spider) {
		s.transcripts = tf
	}
}

// WithProgress sets the per-page progress callback.
func WithProgress(fn ProgressFunc) SpiderOption {
	return func(s *Spider) {
		s.progress = fn
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider scoped to baseDomain using the given HTTP
// client. The client is injected so transports (timeouts, test servers,
// proxies) are configured by the caller; a nil client uses
// http.DefaultClient.
func NewSpider(client *http.Client, baseDomain string, opts ...SpiderOption) *Spider {
	if client == nil {
		client = http.DefaultClient
	}
	if !strings.Contains(baseDomain, "://") {
		baseDomain = "https://" + baseDomain
	}

	s := &Spider{
		client:      client,
		baseDomain:  baseDomain,
		baseHost:    urlnorm.Host(urlnorm.Normalize(baseDomain)),
		maxBodySize: defaultMaxBodySize,
		userAgent:   defaultUserAgent,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl runs the breadth-first crawl from seedURL until the frontier is
// exhausted or the page cap is hit. A seed that does not normalize yields
// an empty queue and a zero-page result rather than an error; the only
// error Crawl returns is context cancellation, and even then the partial
// result is returned alongside it.
func (s *Spider) Crawl(ctx context.Context, seedURL string) (*Result, error) {
	s.reset()
	res := &Result{}

	if seed := urlnorm.Normalize(seedURL); seed != "" {
		s.queue = append(s.queue, seed)
		s.queued[seed] = true
	} else {
		s.logger.Warn("seed URL did not normalize, nothing to crawl", "seed", seedURL)
	}

	s.logger.Info("starting crawl",
		"seed", seedURL,
		"baseHost", s.baseHost,
		"maxPages", s.maxPages,
	)

	for len(s.queue) > 0 {
		if s.maxPages > 0 && res.PagesCrawled >= s.maxPages {
			s.logger.Info("reached page cap", "maxPages", s.maxPages)
			break
		}

		select {
		case <-ctx.Done():
			s.finish(res)
			return res, ctx.Err()
		default:
		}

		current := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.queued, current)

		// Guards re-entry if the same URL was queued twice in-flight.
		if current == "" || s.visited[current] {
			continue
		}
		s.visited[current] = true
		res.PagesCrawled++

		doc, outcome := s.processPage(ctx, current)
		switch outcome {
		case OutcomeStored:
			res.Documents = append(res.Documents, doc)
			res.PagesStored++
		case OutcomeFetchFailed:
			res.FetchErrors++
		case OutcomeProcessFailed:
			res.ProcessErrors++
		}

		s.logger.Debug("page processed",
			"seq", res.PagesCrawled,
			"url", current,
			"outcome", outcome.String(),
			"queued", len(s.queue),
		)
		if s.progress != nil {
			s.progress(res.PagesCrawled, current, outcome)
		}
	}

	s.finish(res)
	s.logger.Info("crawl finished",
		"pagesCrawled", res.PagesCrawled,
		"pagesStored", res.PagesStored,
		"internalLinks", len(res.InternalLinks),
		"fetchErrors", res.FetchErrors,
		"processErrors", res.ProcessErrors,
	)
	return res, nil
}

// Summary converts a crawl result into the reportable summary form.
func (s *Spider) Summary(res *Result, seedURL string) *model.CrawlSummary {
	return &model.CrawlSummary{
		Domain:        s.baseDomain,
		SeedURL:       urlnorm.Normalize(seedURL),
		PagesCrawled:  res.PagesCrawled,
		PagesStored:   res.PagesStored,
		FetchErrors:   res.FetchErrors,
		ProcessErrors: res.ProcessErrors,
		InternalLinks: res.InternalLinks,
	}
}

// reset clears the frontier state so the Spider can be reused.
func (s *Spider) reset() {
	s.visited = make(map[string]bool)
	s.queued = make(map[string]bool)
	s.queue = s.queue[:0]
	s.internal = make(map[string]bool)
}

// finish sorts the accumulated internal-link set into the result.
func (s *Spider) finish(res *Result) {
	res.InternalLinks = make([]string, 0, len(s.internal))
	for link := range s.internal {
		res.InternalLinks = append(res.InternalLinks, link)
	}
	sort.Strings(res.InternalLinks)
}

// processPage fetches, parses, and extracts a single page. It returns the
// document to store and the outcome; the document is only meaningful for
// OutcomeStored.
func (s *Spider) processPage(ctx context.Context, pageURL string) (model.PageDocument, Outcome) {
	body, err := s.fetch(ctx, pageURL)
	if err != nil {
		s.logger.Warn("fetch failed", "url", pageURL, "error", err)
		return model.PageDocument{}, OutcomeFetchFailed
	}

	page, err := ParsePage(body)
	if err != nil {
		s.logger.Warn("parse failed", "url", pageURL, "error", err)
		return model.PageDocument{}, OutcomeProcessFailed
	}

	// Links are extracted before text so frontier growth never depends on
	// content extraction succeeding. The clone-based text extraction keeps
	// the two independent either way.
	var override string
	for _, link := range page.ExtractLinks(pageURL, s.baseHost) {
		switch link.Kind {
		case model.LinkSameDomain:
			s.internal[link.URL] = true
			if !s.visited[link.URL] && !s.queued[link.URL] {
				s.queue = append(s.queue, link.URL)
				s.queued[link.URL] = true
			}
		case model.LinkExternalVideo:
			// A transcript replaces the referring page's own text: a page
			// whose content of interest is a linked video stores the
			// video's captions, not its own boilerplate. The first
			// transcript found wins.
			if s.transcripts == nil || override != "" {
				continue
			}
			transcript, err := s.transcripts.FetchTranscript(ctx, link.URL)
			if err != nil {
				s.logger.Debug("transcript unavailable", "video", link.URL, "error", err)
				continue
			}
			override = transcript
		}
	}

	text := override
	if text == "" {
		text = page.VisibleText()
	}

	return model.NewPageDocument(pageURL, text, s.baseDomain), OutcomeStored
}

// fetch performs a single GET and returns the response body.
// Non-2xx statuses are transport errors: the page is abandoned.
func (s *Spider) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, err
	}
	return body, nil
}
