package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/corpreport/internal/model"
)

// BatchProcessor runs a pipeline over several datasets concurrently.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline per dataset.
	pipelineFactory func() *Pipeline

	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithBatchConcurrency sets the maximum number of datasets processed at
// once. Default is 2.
func WithBatchConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     2,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs a fresh pipeline over each dataset. Results are in
// dataset order. A pipeline error cancels the remaining work and is
// returned; the results of datasets that did not run are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, datasets []*model.Dataset) ([]*Result, error) {
	bp.logger.Debug("starting batch processing",
		"datasets", len(datasets),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*Result, len(datasets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)
	for i, ds := range datasets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			res, err := bp.pipelineFactory().Execute(ctx, ds)
			results[i] = res
			if err != nil {
				bp.logger.Warn("pipeline failed", "index", i, "error", err)
				return err
			}
			return nil
		})
	}
	err := g.Wait()

	bp.logger.Debug("batch processing complete",
		"datasets", len(datasets),
		"elapsed", time.Since(start),
	)
	return results, err
}
