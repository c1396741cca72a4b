package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/pipeline"
)

// SimpleWriter outputs human-readable text reports.
// Every summary is drawn as a terminal table; amounts get thousands
// separators.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether reports without rows are shown.
	showEmpty bool

	// verbose adds timings and chart details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show reports that produced no rows.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs every outcome in human-readable format.
func (w *SimpleWriter) Write(res *pipeline.Result) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, res)
	for _, o := range res.Outcomes {
		if err := w.writeOutcome(&sb, o); err != nil {
			return 0, err
		}
	}
	w.writeFooter(&sb, res)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, res *pipeline.Result) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         CORPREPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run:        %s\n", res.Run.ID)
	fmt.Fprintf(sb, "Generated:  %s\n", res.Run.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	for i, src := range res.Run.Sources {
		label := "Sources:"
		if i > 0 {
			label = ""
		}
		fmt.Fprintf(sb, "%-11s %s (%s, %s rows, sha3 %s)\n",
			label, src.Path, src.Format, humanize.Comma(int64(src.Rows)), src.ShortFingerprint())
	}
	sb.WriteString("\n")
}

// writeOutcome writes one report section.
func (w *SimpleWriter) writeOutcome(sb *strings.Builder, o analysis.Outcome) error {
	st := statusOf(o)
	if st == statusOK && o.Summary.Len() == 0 && !w.showEmpty {
		return nil
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.ToUpper(titleOf(o)))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	switch st {
	case statusNoResult:
		fmt.Fprintf(sb, "  [!] no result: %v\n\n", o.Err)
		return nil
	case statusFailed:
		if o.Summary == nil {
			fmt.Fprintf(sb, "  [x] failed: %v\n\n", o.Error())
			return nil
		}
	}

	if o.Summary.Len() == 0 {
		sb.WriteString("  No rows\n\n")
	} else {
		table := tablewriter.NewWriter(sb)
		table.Header(o.Summary.Header)
		for _, rec := range o.Summary.Records() {
			if err := table.Append(rec); err != nil {
				return fmt.Errorf("failed to format %s: %w", o.Report, err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render %s table: %w", o.Report, err)
		}
		fmt.Fprintf(sb, "  %s rows\n\n", humanize.Comma(int64(o.Summary.Len())))
	}

	if o.RenderErr != nil {
		fmt.Fprintf(sb, "  [x] chart failed: %v\n\n", o.RenderErr)
	}
	if w.verbose {
		fmt.Fprintf(sb, "  Elapsed: %s\n", o.Duration.Round(time.Microsecond))
		if o.Chart != nil {
			fmt.Fprintf(sb, "  Chart:   %s, %d points\n", o.Chart.Kind, len(o.Chart.Points))
		}
		sb.WriteString("\n")
	}
	return nil
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, res *pipeline.Result) {
	warnings := len(res.Warnings())
	failures := 0
	for _, o := range res.Outcomes {
		if o.Failed() {
			failures++
		}
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%d reports, %d without result, %d failed\n", len(res.Outcomes), warnings, failures)
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
