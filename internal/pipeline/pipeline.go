package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/model"
)

// Step is one unit of work in a pipeline.
type Step interface {
	// Do runs the step over ds. Failures are recorded in the Outcome, not
	// returned, so one failing report cannot hide the others.
	Do(ctx context.Context, ds *model.Dataset) analysis.Outcome

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline executes steps over a dataset.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps executing after a step fails hard.
	// Soft failures (model.ErrNoResult) never stop the pipeline.
	continueOnError bool

	// concurrency is the number of steps run at once. One means sequential.
	concurrency int

	now func() time.Time
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps the pipeline going after a report fails hard.
// The default is to stop at the first hard failure.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// WithConcurrency runs up to n steps at once. Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithClock sets the clock used for the run timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:       make([]Step, 0),
		concurrency: 1,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Execute runs every step over ds.
//
// The returned Result holds the outcomes of the steps that ran, in step
// order. The error is non-nil when the context was cancelled, or when a
// step failed hard and the pipeline does not continue on error; steps
// that did not run are missing from the Result.
func (p *Pipeline) Execute(ctx context.Context, ds *model.Dataset) (*Result, error) {
	res := &Result{
		Run: model.RunInfo{
			ID:          uuid.NewString(),
			GeneratedAt: p.now(),
		},
	}
	if ds != nil {
		res.Run.Sources = ds.Sources
	}

	p.logger.Debug("starting pipeline",
		"run", res.Run.ID,
		"steps", len(p.steps),
		"concurrency", p.concurrency,
	)

	var err error
	if p.concurrency > 1 {
		err = p.executeParallel(ctx, ds, res)
	} else {
		err = p.executeSequential(ctx, ds, res)
	}

	p.logger.Debug("pipeline finished",
		"run", res.Run.ID,
		"completed", len(res.Outcomes),
		"elapsed", time.Since(res.Run.GeneratedAt),
	)
	return res, err
}

func (p *Pipeline) executeSequential(ctx context.Context, ds *model.Dataset, res *Result) error {
	for _, step := range p.steps {
		// Cancellation is checked between reports; a running report finishes.
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", ctx.Err())
			return ctx.Err()
		default:
		}

		out := p.run(ctx, step, ds)
		res.Outcomes = append(res.Outcomes, out)
		if out.Failed() && !p.continueOnError {
			return fmt.Errorf("report %s failed: %w", step.Name(), out.Error())
		}
	}
	return nil
}

func (p *Pipeline) executeParallel(ctx context.Context, ds *model.Dataset, res *Result) error {
	outcomes := make([]*analysis.Outcome, len(p.steps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, step := range p.steps {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			out := p.run(gctx, step, ds)
			outcomes[i] = &out
			if out.Failed() && !p.continueOnError {
				return fmt.Errorf("report %s failed: %w", step.Name(), out.Error())
			}
			return nil
		})
	}
	err := g.Wait()

	for _, out := range outcomes {
		if out != nil {
			res.Outcomes = append(res.Outcomes, *out)
		}
	}
	if err == nil {
		err = ctx.Err()
	}
	return err
}

func (p *Pipeline) run(ctx context.Context, step Step, ds *model.Dataset) analysis.Outcome {
	p.logger.Info("executing step", "step", step.Name())

	out := step.Do(ctx, ds)
	switch {
	case out.NoResult():
		p.logger.Warn("report produced no result", "step", step.Name(), "error", out.Err)
	case out.Failed():
		p.logger.Error("step failed", "step", step.Name(), "error", out.Error())
	default:
		p.logger.Debug("step completed",
			"step", step.Name(),
			"rows", out.Summary.Len(),
			"elapsed", out.Duration,
		)
	}
	return out
}
