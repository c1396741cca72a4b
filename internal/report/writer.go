package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/pipeline"
)

// Writer defines the interface for report output.
// Implementations write the outcomes of one pipeline run.
type Writer interface {
	// Write outputs the result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(res *pipeline.Result) (int, error)
}

// MultiWriter writes the same result to several Writers.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(res *pipeline.Result) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(res)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Options holds the settings New passes to the writer it builds.
type Options struct {
	// Version is recorded in JSON output.
	Version string

	// Charts, when set, is the renderer that wrote PNG charts. The Markdown
	// writer links its files and the HTML writer embeds its images.
	Charts *chart.PNGRenderer

	// Verbose adds timings and chart details to text output.
	Verbose bool
}

// New returns the writer for format. Format names are those of
// config.Formats.
func New(format string, output io.Writer, opts Options) (Writer, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return NewSimpleWriter(output, WithVerbose(opts.Verbose)), nil
	case "json":
		return NewJSONWriter(output, WithPrettyPrint(), WithVersion(opts.Version)), nil
	case "markdown", "md":
		var mopts []MarkdownWriterOption
		if opts.Charts != nil {
			mopts = append(mopts, WithChartLinks(opts.Charts))
		}
		return NewMarkdownWriter(output, mopts...), nil
	case "html":
		var hopts []HTMLWriterOption
		if opts.Charts != nil {
			hopts = append(hopts, WithChartImages(opts.Charts))
		}
		return NewHTMLWriter(output, hopts...), nil
	case "xlsx":
		return NewXLSXWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// status is the display state of one outcome.
type status string

const (
	statusOK       status = "ok"
	statusNoResult status = "no_result"
	statusFailed   status = "failed"
)

func statusOf(o analysis.Outcome) status {
	switch {
	case o.NoResult():
		return statusNoResult
	case o.Failed():
		return statusFailed
	default:
		return statusOK
	}
}

// titleOf returns the summary title, falling back to the report name for
// outcomes without a summary.
func titleOf(o analysis.Outcome) string {
	if o.Summary != nil && o.Summary.Title != "" {
		return o.Summary.Title
	}
	if r, ok := analysis.Lookup(o.Report); ok {
		return r.Title
	}
	return o.Report
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
