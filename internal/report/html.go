package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
	"github.com/nao1215/corpreport/internal/pipeline"
)

const htmlStyle = `body{font-family:sans-serif;margin:2em auto;max-width:960px;color:#222}
table{border-collapse:collapse;margin:1em 0}
th,td{border:1px solid #ccc;padding:4px 8px}
td.num{text-align:right}
th{background:#f4f4f4}
.warn{color:#a15c00}
.fail{color:#b00020}
img{max-width:100%}
footer{margin-top:3em;color:#777;font-size:small}`

// HTMLWriter outputs a standalone HTML page.
// When a chart renderer is set, every chart is embedded as a PNG data URI.
type HTMLWriter struct {
	baseWriter

	charts *chart.PNGRenderer
}

// HTMLWriterOption configures an HTMLWriter.
type HTMLWriterOption func(*HTMLWriter)

// WithChartImages embeds the charts drawn by r.
func WithChartImages(r *chart.PNGRenderer) HTMLWriterOption {
	return func(w *HTMLWriter) {
		w.charts = r
	}
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer, opts ...HTMLWriterOption) *HTMLWriter {
	w := &HTMLWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the result as an HTML document.
func (w *HTMLWriter) Write(res *pipeline.Result) (int, error) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, attr("lang", "en"))
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	head.AppendChild(withText(element(atom.Title), "Company Report"))
	head.AppendChild(withText(element(atom.Style), htmlStyle))
	root.AppendChild(head)

	body := element(atom.Body)
	root.AppendChild(body)
	body.AppendChild(withText(element(atom.H1), "Company Report"))
	body.AppendChild(runTable(res))

	for _, o := range res.Outcomes {
		section, err := w.section(o)
		if err != nil {
			return 0, err
		}
		body.AppendChild(section)
	}

	footer := element(atom.Footer)
	footer.AppendChild(withText(element(atom.P), "Report generated by corpreport"))
	body.AppendChild(footer)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return 0, fmt.Errorf("failed to render HTML: %w", err)
	}
	buf.WriteByte('\n')
	return w.output.Write(buf.Bytes())
}

// section builds the element for one outcome.
func (w *HTMLWriter) section(o analysis.Outcome) (*html.Node, error) {
	sec := element(atom.Section, attr("id", o.Report))
	sec.AppendChild(withText(element(atom.H2), titleOf(o)))

	switch statusOf(o) {
	case statusNoResult:
		sec.AppendChild(withText(element(atom.P, attr("class", "warn")), "No result: "+o.Err.Error()))
		return sec, nil
	case statusFailed:
		sec.AppendChild(withText(element(atom.P, attr("class", "fail")), "Report failed: "+o.Error().Error()))
		if o.Summary == nil {
			return sec, nil
		}
	}

	if o.Summary.Len() == 0 {
		sec.AppendChild(withText(element(atom.P), "No rows."))
		return sec, nil
	}

	table := element(atom.Table)
	thead := element(atom.Thead)
	tr := element(atom.Tr)
	for _, h := range o.Summary.Header {
		tr.AppendChild(withText(element(atom.Th), h))
	}
	thead.AppendChild(tr)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, r := range o.Summary.Rows {
		tr := element(atom.Tr)
		for _, v := range r.Values() {
			td := element(atom.Td)
			switch v.(type) {
			case int, float64:
				td.Attr = append(td.Attr, attr("class", "num"))
			}
			tr.AppendChild(withText(td, model.FormatValue(v)))
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	sec.AppendChild(table)

	if w.charts != nil && o.Chart != nil && o.RenderErr == nil {
		var img bytes.Buffer
		if err := w.charts.Encode(&img, o.Report, o.Chart); err != nil {
			sec.AppendChild(withText(element(atom.P, attr("class", "warn")), "Chart unavailable: "+err.Error()))
			return sec, nil
		}
		src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img.Bytes())
		sec.AppendChild(element(atom.Img, attr("src", src), attr("alt", titleOf(o))))
	}
	return sec, nil
}

// runTable lists the run metadata and sources.
func runTable(res *pipeline.Result) *html.Node {
	table := element(atom.Table, attr("class", "run"))
	add := func(k, v string) {
		tr := element(atom.Tr)
		tr.AppendChild(withText(element(atom.Th), k))
		tr.AppendChild(withText(element(atom.Td), v))
		table.AppendChild(tr)
	}
	add("Run", res.Run.ID)
	add("Generated", res.Run.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	for _, src := range res.Run.Sources {
		add("Source", src.Path+" ("+src.Format+", "+strconv.Itoa(src.Rows)+" rows, sha3 "+src.ShortFingerprint()+")")
	}
	return table
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// withText appends a text child to n and returns n.
func withText(n *html.Node, text string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
