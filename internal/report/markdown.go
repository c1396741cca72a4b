package report

import (
	"io"
	"math"
	"os"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/markdown/mermaid/quadrant"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
	"github.com/nao1215/corpreport/internal/pipeline"
)

// maxPieSlices bounds Mermaid pie charts. Smaller slices are merged into
// a single "Other" slice.
const maxPieSlices = 12

// MarkdownWriter outputs results in Markdown format.
// Donut and bar charts become Mermaid pie charts and the bubble chart a
// Mermaid quadrant chart, so the document renders on GitHub without the
// PNG files.
type MarkdownWriter struct {
	baseWriter

	// charts locates PNG files to link. Nil disables image links.
	charts *chart.PNGRenderer

	// mermaid enables Mermaid charts.
	mermaid bool
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithChartLinks links the PNG charts written by r.
func WithChartLinks(r *chart.PNGRenderer) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.charts = r
	}
}

// WithMermaid enables or disables Mermaid charts. Enabled by default.
func WithMermaid(enabled bool) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.mermaid = enabled
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		mermaid:    true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(res *pipeline.Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, res)
	for _, o := range res.Outcomes {
		w.writeOutcome(md, o)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, res *pipeline.Result) {
	md.H1("Company Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", "`" + res.Run.ID + "`"},
			{"Generated", res.Run.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Reports", strconv.Itoa(len(res.Outcomes))},
		},
	})
	md.PlainText("")

	if len(res.Run.Sources) > 0 {
		rows := make([][]string, len(res.Run.Sources))
		for i, src := range res.Run.Sources {
			rows[i] = []string{
				"`" + src.Path + "`",
				src.Format,
				strconv.Itoa(src.Rows),
				"`" + src.ShortFingerprint() + "`",
			}
		}
		md.H2("Sources")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"File", "Format", "Rows", "SHA3-256"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeOutcome writes one report section.
func (w *MarkdownWriter) writeOutcome(md *markdown.Markdown, o analysis.Outcome) {
	md.H2(titleOf(o))
	md.PlainText("")

	switch statusOf(o) {
	case statusNoResult:
		md.Warningf("No result: %v", o.Err)
		md.PlainText("")
		return
	case statusFailed:
		md.Cautionf("Report failed: %v", o.Error())
		md.PlainText("")
		if o.Summary == nil {
			return
		}
	}

	if o.Summary.Len() == 0 {
		md.PlainText("No rows.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: o.Summary.Header,
		Rows:   plainRecords(o.Summary),
	})
	md.PlainText("")

	if w.mermaid && o.Chart != nil {
		if block := mermaidChart(o.Chart); block != "" {
			md.CodeBlocks(markdown.SyntaxHighlightMermaid, block)
			md.PlainText("")
		}
	}
	if path, ok := w.chartFile(o); ok {
		md.PlainText(markdown.Image(titleOf(o), path))
		md.PlainText("")
	}
}

// chartFile returns the PNG written for o, if any.
func (w *MarkdownWriter) chartFile(o analysis.Outcome) (string, bool) {
	if w.charts == nil || o.Chart == nil {
		return "", false
	}
	path := w.charts.Path(o.Report)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by corpreport*")
}

// plainRecords formats the rows without grouping separators, which would
// otherwise be read as column breaks by some Markdown tools.
func plainRecords(s *model.Summary) [][]string {
	records := make([][]string, len(s.Rows))
	for i, r := range s.Rows {
		values := r.Values()
		cells := make([]string, len(values))
		for j, v := range values {
			cells[j] = model.FormatPlain(v)
		}
		records[i] = cells
	}
	return records
}

// mermaidChart returns the Mermaid source for spec, or "" when the chart
// kind has no Mermaid counterpart.
func mermaidChart(spec *chart.Spec) string {
	switch spec.Kind {
	case chart.KindDonut, chart.KindBar, chart.KindHBar:
		return pieChart(spec)
	case chart.KindBubble:
		return quadrantChart(spec)
	default:
		return ""
	}
}

// pieChart draws the points of spec as pie slices.
func pieChart(spec *chart.Spec) string {
	pie := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(spec.Title),
		piechart.WithShowData(true),
	)

	var other float64
	for i, p := range spec.Points {
		if p.Value <= 0 {
			continue
		}
		if i >= maxPieSlices-1 && len(spec.Points) > maxPieSlices {
			other += p.Value
			continue
		}
		pie.LabelAndFloatValue(mermaidLabel(p.Label), round2(p.Value))
	}
	if other > 0 {
		pie.LabelAndFloatValue("Other", round2(other))
	}
	return pie.String()
}

// quadrantChart places each bubble on a unit square: share on the x axis,
// log revenue on the y axis.
func quadrantChart(spec *chart.Spec) string {
	q := quadrant.NewChart(io.Discard, quadrant.WithTitle(spec.Title))
	q.XAxis("Small share", "Large share").
		YAxis("Low revenue", "High revenue").
		LF().
		Quadrant1("Leaders").
		Quadrant2("High revenue, small share").
		Quadrant3("Niche").
		Quadrant4("Broad, low revenue").
		LF()

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range spec.Points {
		if p.Y > 0 {
			lo = math.Min(lo, math.Log10(p.Y))
			hi = math.Max(hi, math.Log10(p.Y))
		}
	}
	for _, p := range spec.Points {
		y := 0.5
		switch {
		case p.Y <= 0:
			y = 0
		case hi > lo:
			y = (math.Log10(p.Y) - lo) / (hi - lo)
		}
		x := math.Min(math.Max(p.X/100, 0), 1)
		q.Point(mermaidLabel(p.Label), round2(x), round2(y))
	}
	return q.String()
}

// mermaidLabel strips characters Mermaid treats as syntax.
func mermaidLabel(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '"', ':', '[', ']', '\n', '\r':
			out = append(out, ' ')
		default:
			out = append(out, r)
		}
	}
	return truncateString(string(out), 40)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
