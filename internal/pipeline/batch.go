package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leakspider/leakspider/internal/model"
)

// BatchProcessor crawls multiple seed services with a concurrency limit.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because it keeps the Pipeline focused
// on single-seed execution and allows different batch strategies later.
// The default concurrency is 1: seeds are crawled strictly one after
// another unless the operator explicitly asks for more.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline per seed so state never
	// leaks between crawls. The seed is passed so per-site configuration
	// can be applied.
	pipelineFactory func(seed string) *Pipeline

	// concurrency is the maximum number of concurrent crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports, indexed like the input seeds.
	results []*model.CrawlReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent crawls.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func(seed string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     1,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch crawls multiple seeds, respecting the concurrency limit and
// context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because errgroup handles the limiting correctly with less machinery.
// A failed crawl does not stop the batch; its error lives in the report.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, seeds []string) ([]*model.CrawlReport, error) {
	bp.logger.Info("starting batch processing",
		slog.Int("total_seeds", len(seeds)),
		slog.Int("concurrency", bp.concurrency))

	startTime := time.Now()
	bp.results = make([]*model.CrawlReport, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("crawling seed",
				slog.String("seed", seed),
				slog.Int("index", i+1),
				slog.Int("total", len(seeds)))

			report := model.NewCrawlReport(seed)
			p := bp.pipelineFactory(seed)
			err := p.Execute(ctx, report)

			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("crawl failed",
					slog.String("seed", seed),
					slog.String("error", err.Error()))
				// The error is recorded in the report; keep the batch going.
				return nil
			}

			bp.logger.Info("crawl completed", slog.String("seed", seed))
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		slog.Int("total_seeds", len(seeds)),
		slog.Duration("elapsed", time.Since(startTime)))

	return bp.results, err
}
