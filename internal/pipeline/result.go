package pipeline

import (
	"errors"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/model"
)

// Result is the outcome of one pipeline run.
type Result struct {
	// Run identifies the run and its sources.
	Run model.RunInfo

	// Outcomes holds one entry per executed step, in step order.
	Outcomes []analysis.Outcome
}

// Summaries returns the summaries of the reports that produced one.
func (r *Result) Summaries() []*model.Summary {
	var out []*model.Summary
	for _, o := range r.Outcomes {
		if o.Summary != nil {
			out = append(out, o.Summary)
		}
	}
	return out
}

// Outcome returns the outcome of the named report.
func (r *Result) Outcome(name string) (analysis.Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Report == name {
			return o, true
		}
	}
	return analysis.Outcome{}, false
}

// Warnings returns the soft failures.
func (r *Result) Warnings() []error {
	var warns []error
	for _, o := range r.Outcomes {
		if o.NoResult() {
			warns = append(warns, o.Err)
		}
	}
	return warns
}

// Err joins every hard failure, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Failed() {
			errs = append(errs, o.Error())
		}
	}
	return errors.Join(errs...)
}
