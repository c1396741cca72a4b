package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
	"github.com/nao1215/corpreport/internal/pipeline"
)

// JSONWriter outputs results in JSON format.
// Each report keeps the shape of its summary table: rows are objects keyed
// by the output column names.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is the corpreport version recorded in the output.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the program version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the result wrapped with run metadata.
func (w *JSONWriter) Write(res *pipeline.Result) (int, error) {
	return w.writeJSON(NewJSONReport(res, w.version))
}

// WriteSummary outputs a single summary table.
func (w *JSONWriter) WriteSummary(s *model.Summary) (int, error) {
	return w.writeJSON(s)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	// Version is the corpreport version that generated this report.
	Version string `json:"version,omitempty"`

	// Run identifies the run and its input files.
	Run model.RunInfo `json:"run"`

	// Reports holds one entry per executed report, in run order.
	Reports []JSONOutcome `json:"reports"`
}

// JSONOutcome is one report of a JSONReport.
type JSONOutcome struct {
	Report  string      `json:"report"`
	Title   string      `json:"title"`
	Status  string      `json:"status"`
	Columns []string    `json:"columns,omitempty"`
	Rows    []model.Row `json:"rows"`

	// Chart is the chart description, so that other tools can redraw it.
	Chart *chart.Spec `json:"chart,omitempty"`

	Error     string  `json:"error,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

// NewJSONReport converts a pipeline result into its JSON document.
func NewJSONReport(res *pipeline.Result, version string) *JSONReport {
	doc := &JSONReport{
		Version: version,
		Run:     res.Run,
		Reports: make([]JSONOutcome, 0, len(res.Outcomes)),
	}
	for _, o := range res.Outcomes {
		out := JSONOutcome{
			Report:    o.Report,
			Title:     titleOf(o),
			Status:    string(statusOf(o)),
			Chart:     o.Chart,
			ElapsedMS: float64(o.Duration.Microseconds()) / 1000,
		}
		if o.Summary != nil {
			out.Columns = o.Summary.Header
			out.Rows = o.Summary.Rows
			if out.Rows == nil {
				out.Rows = []model.Row{}
			}
		}
		if err := o.Error(); err != nil {
			out.Error = err.Error()
		}
		doc.Reports = append(doc.Reports, out)
	}
	return doc
}
