package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
)

// ReportStep runs one report and renders its chart.
type ReportStep struct {
	report   analysis.Report
	renderer chart.Renderer
	params   analysis.Params
	logger   *slog.Logger
}

// ReportStepOption configures a ReportStep.
type ReportStepOption func(*ReportStep)

// WithRenderer sets the chart renderer. Without one, charts are described
// but not rendered.
func WithRenderer(r chart.Renderer) ReportStepOption {
	return func(s *ReportStep) {
		s.renderer = r
	}
}

// WithParams sets the report parameters.
func WithParams(p analysis.Params) ReportStepOption {
	return func(s *ReportStep) {
		s.params = p
	}
}

// WithStepLogger sets the logger passed to the report.
func WithStepLogger(logger *slog.Logger) ReportStepOption {
	return func(s *ReportStep) {
		s.logger = logger
	}
}

// NewReportStep creates a step for report.
func NewReportStep(report analysis.Report, opts ...ReportStepOption) *ReportStep {
	s := &ReportStep{report: report}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name returns the report name.
func (s *ReportStep) Name() string {
	return s.report.Name
}

// Report returns the wrapped report.
func (s *ReportStep) Report() analysis.Report {
	return s.report
}

// Do runs the report over ds.
func (s *ReportStep) Do(ctx context.Context, ds *model.Dataset) analysis.Outcome {
	return analysis.Run(ctx, s.report, ds, s.renderer,
		analysis.WithLogger(s.logger),
		analysis.WithParams(s.params),
	)
}

// ReportSteps wraps every report in a ReportStep sharing opts.
func ReportSteps(reports []analysis.Report, opts ...ReportStepOption) []Step {
	steps := make([]Step, len(reports))
	for i, r := range reports {
		steps[i] = NewReportStep(r, opts...)
	}
	return steps
}

// DefaultPipeline builds a pipeline running the named reports (all when
// names is empty).
func DefaultPipeline(names []string, pipelineOpts []Option, stepOpts ...ReportStepOption) (*Pipeline, error) {
	reports, err := analysis.Select(names)
	if err != nil {
		return nil, err
	}
	p := New(pipelineOpts...)
	p.AddSteps(ReportSteps(reports, stepOpts...)...)
	return p, nil
}
