package crawler

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// SeedResult pairs a seed URL with its crawl result. Err is non-nil only
// when the crawl was cancelled; the partial result is still populated.
type SeedResult struct {
	Seed   string
	Result *Result
	Err    error
}

// BatchProcessor runs independent crawls for multiple seed URLs with
// bounded concurrency. Each seed gets its own Spider so frontier state is
// never shared between crawls.
type BatchProcessor struct {
	// newSpider builds a fresh Spider for a seed.
	newSpider func(seed string) *Spider

	// concurrency bounds simultaneous crawls.
	concurrency int

	logger *slog.Logger
}

// NewBatchProcessor creates a BatchProcessor. newSpider is called once per
// seed; concurrency values below 1 are treated as 1.
func NewBatchProcessor(newSpider func(seed string) *Spider, concurrency int, logger *slog.Logger) *BatchProcessor {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		newSpider:   newSpider,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ProcessSeeds crawls every seed and returns results in seed order.
// A cancelled context stops in-flight crawls; their partial results are
// recorded per-seed rather than failing the batch.
func (b *BatchProcessor) ProcessSeeds(ctx context.Context, seeds []string) []SeedResult {
	results := make([]SeedResult, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			b.logger.Info("batch crawl started", "seed", seed)
			res, err := b.newSpider(seed).Crawl(ctx, seed)
			results[i] = SeedResult{Seed: seed, Result: res, Err: err}
			if err != nil {
				b.logger.Warn("batch crawl interrupted", "seed", seed, "error", err)
			} else {
				b.logger.Info("batch crawl finished",
					"seed", seed,
					"pagesStored", res.PagesStored,
				)
			}
			// Cancellation is recorded per seed; returning the error here
			// would tear down sibling crawls through the group context.
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines always return nil
	return results
}
