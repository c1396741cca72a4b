package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
)

// Outcome is the result of running one report.
type Outcome struct {
	// Report is the report name.
	Report string

	// Summary is the summary table. Nil when Err is set.
	Summary *model.Summary

	// Chart is the chart description. Nil for reports without a chart,
	// empty summaries and failed runs.
	Chart *chart.Spec

	// Err is the aggregation failure. It wraps model.ErrNoResult for
	// reports whose policy turns failures into "no result".
	Err error

	// RenderErr is a render failure the report's policy returns.
	RenderErr error

	// Duration is the wall time of the run.
	Duration time.Duration
}

// NoResult reports whether the report failed softly.
func (o Outcome) NoResult() bool {
	return errors.Is(o.Err, model.ErrNoResult)
}

// Failed reports whether the outcome carries a hard error.
func (o Outcome) Failed() bool {
	return (o.Err != nil && !o.NoResult()) || o.RenderErr != nil
}

// Error returns the first error of the outcome, or nil.
func (o Outcome) Error() error {
	if o.Err != nil {
		return o.Err
	}
	return o.RenderErr
}

// runConfig holds Run options.
type runConfig struct {
	logger *slog.Logger
	params Params
}

// RunOption configures Run.
type RunOption func(*runConfig)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithParams sets the report parameters.
func WithParams(p Params) RunOption {
	return func(c *runConfig) {
		c.params = p
	}
}

// Run aggregates ds with r, describes the chart and renders it with
// renderer (which may be nil). Failures are recorded in the Outcome
// according to r.Policy; Run itself never fails.
func Run(ctx context.Context, r Report, ds *model.Dataset, renderer chart.Renderer, opts ...RunOption) Outcome {
	cfg := runConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger.With("report", r.Name)

	start := time.Now()
	out := Outcome{Report: r.Name}

	if err := ctx.Err(); err != nil {
		out.Err = err
		return finish(&out, start)
	}

	summary, err := r.Aggregate(ds, cfg.params)
	if err != nil {
		logger.Error("aggregation failed", "error", err)
		out.Err = failure(r, err)
		return finish(&out, start)
	}
	logger.Debug("aggregated", "rows", summary.Len())

	if r.Describe == nil || summary.Len() == 0 {
		out.Summary = summary
		return finish(&out, start)
	}

	spec, err := r.Describe(summary)
	if err != nil {
		if r.Policy.SoftAggregate {
			logger.Error("chart description failed", "error", err)
			out.Err = failure(r, err)
			return finish(&out, start)
		}
		out.Summary = summary
		renderFailure(logger, r, &out, err)
		return finish(&out, start)
	}
	out.Summary = summary
	out.Chart = spec

	if renderer != nil {
		if err := renderer.Render(ctx, r.Name, spec); err != nil {
			renderFailure(logger, r, &out, err)
		}
	}
	return finish(&out, start)
}

func finish(out *Outcome, start time.Time) Outcome {
	out.Duration = time.Since(start)
	return *out
}

// failure wraps an aggregation error according to the report policy.
func failure(r Report, err error) error {
	if r.Policy.SoftAggregate {
		return fmt.Errorf("%s: %w: %w", r.Name, model.ErrNoResult, err)
	}
	return fmt.Errorf("%s: %w", r.Name, err)
}

// renderFailure records or logs a render error according to the policy.
func renderFailure(logger *slog.Logger, r Report, out *Outcome, err error) {
	if r.Policy.SwallowRender {
		logger.Warn("chart rendering failed", "error", err)
		return
	}
	logger.Error("chart rendering failed", "error", err)
	out.RenderErr = fmt.Errorf("%s: render: %w", r.Name, err)
}
