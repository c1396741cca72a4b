package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
	"github.com/nao1215/corpreport/internal/pipeline"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func testDataset() *model.Dataset {
	return &model.Dataset{
		Companies: model.NewCompanyTable(
			model.Company{Name: "Acme", City: "Austin", State: "TX", PostalCode: "73301", Revenue: model.ParseRevenue("1234567.5"), Industry: "Tech"},
			model.Company{Name: "Globex", City: "Boston", State: "MA", PostalCode: "02101", Revenue: model.ParseRevenue("2000"), Industry: "Retail"},
			model.Company{Name: "Initech", City: "Austin", State: "TX", PostalCode: "73301", Revenue: model.ParseRevenue("300"), Industry: "Tech"},
		),
		People: model.NewPeopleTable(
			model.NewPerson("engineer"),
			model.NewPerson("Engineer "),
			model.NewPerson("manager"),
		),
		Sources: []model.SourceInfo{
			{Path: "companies.csv", Format: "csv", Fingerprint: "0123456789abcdef", Rows: 3},
			{Path: "people.csv", Format: "csv", Fingerprint: "fedcba9876543210", Rows: 3},
		},
	}
}

// createTestResult runs every report over the test dataset.
func createTestResult(t *testing.T, ds *model.Dataset) *pipeline.Result {
	t.Helper()
	p, err := pipeline.DefaultPipeline(nil,
		[]pipeline.Option{
			pipeline.WithLogger(quietLogger()),
			pipeline.WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
		},
		pipeline.WithStepLogger(quietLogger()),
		pipeline.WithRenderer(chart.NewRecorder()),
	)
	if err != nil {
		t.Fatalf("failed to build pipeline: %v", err)
	}
	res, err := p.Execute(context.Background(), ds)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	return res
}

// withFailures appends a soft and a hard failure to res.
func withFailures(res *pipeline.Result) *pipeline.Result {
	out := *res
	out.Outcomes = append(append([]analysis.Outcome{}, res.Outcomes...),
		analysis.Outcome{Report: "Soft_Report", Err: errors.Join(model.ErrNoResult, errors.New("nothing to count"))},
		analysis.Outcome{Report: "Hard_Report", Err: errors.New("column exploded")},
	)
	return &out
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	res := withFailures(createTestResult(t, testDataset()))

	t.Run("writes header and sources", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"CORPREPORT", res.Run.ID, "companies.csv", "0123456789ab"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("formats amounts with separators", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "1,234,567.50") {
			t.Errorf("expected grouped amount, got:\n%s", buf.String())
		}
	})

	t.Run("reports failures", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "no result: ") || !strings.Contains(output, "nothing to count") {
			t.Error("expected the soft failure")
		}
		if !strings.Contains(output, "failed: column exploded") {
			t.Error("expected the hard failure")
		}
		if !strings.Contains(output, "8 reports, 1 without result, 1 failed") {
			t.Errorf("unexpected footer:\n%s", output)
		}
	})

	t.Run("verbose shows chart details", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Chart:   donut") {
			t.Errorf("expected chart details, got:\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests JSON output.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	res := withFailures(createTestResult(t, testDataset()))

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, WithPrettyPrint(), WithVersion("v1.2.3")).Write(res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc struct {
		Version string `json:"version"`
		Run     struct {
			ID      string             `json:"id"`
			Sources []model.SourceInfo `json:"sources"`
		} `json:"run"`
		Reports []struct {
			Report string           `json:"report"`
			Status string           `json:"status"`
			Rows   []map[string]any `json:"rows"`
			Chart  *chart.Spec      `json:"chart"`
			Error  string           `json:"error"`
		} `json:"reports"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if doc.Version != "v1.2.3" || doc.Run.ID != res.Run.ID || len(doc.Run.Sources) != 2 {
		t.Errorf("unexpected metadata: %+v", doc)
	}
	if len(doc.Reports) != 8 {
		t.Fatalf("expected 8 reports, got %d", len(doc.Reports))
	}

	byName := make(map[string]int)
	for i, r := range doc.Reports {
		byName[r.Report] = i
	}
	company := doc.Reports[byName[analysis.NameRevenueByCompany]]
	if company.Status != "ok" || company.Rows[0]["Company_Name"] != "Acme" || company.Rows[0]["Total_Revenue"] != 1234567.5 {
		t.Errorf("unexpected company rows: %+v", company.Rows)
	}
	if company.Chart == nil || company.Chart.Kind != chart.KindHBar {
		t.Errorf("expected hbar chart description, got %+v", company.Chart)
	}
	if s := doc.Reports[byName["Soft_Report"]]; s.Status != "no_result" {
		t.Errorf("expected no_result, got %q", s.Status)
	}
	if h := doc.Reports[byName["Hard_Report"]]; h.Status != "failed" || h.Error != "column exploded" || h.Rows != nil {
		t.Errorf("unexpected failed report: %+v", h)
	}

	t.Run("compact output is one line", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteSummary(&model.Summary{Report: "x"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected compact JSON, got %q", buf.String())
		}
	})
}

// TestMarkdownWriter tests Markdown output.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	res := withFailures(createTestResult(t, testDataset()))

	t.Run("writes tables and mermaid charts", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{
			"# Company Report",
			"## Sources",
			"Total_Revenue",
			"```mermaid",
			"pie",
			"quadrantChart",
			"1234567.5",
			"column exploded",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "![") {
			t.Error("expected no image links without a chart directory")
		}
	})

	t.Run("links rendered charts", func(t *testing.T) {
		t.Parallel()
		r := chart.NewPNGRenderer(t.TempDir())
		path := r.Path(analysis.NameTopCities)
		if err := os.WriteFile(path, []byte("png"), 0600); err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf, WithChartLinks(r), WithMermaid(false)).Write(res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, path) {
			t.Errorf("expected a link to %s", path)
		}
		if strings.Contains(output, r.Path(analysis.NameJobTitles)) {
			t.Error("expected no link to a chart that was not written")
		}
		if strings.Contains(output, "```mermaid") {
			t.Error("expected mermaid to be disabled")
		}
	})
}

func TestPieChartMergesSmallSlices(t *testing.T) {
	t.Parallel()

	spec := &chart.Spec{Kind: chart.KindBar, Title: "Many"}
	for i := range maxPieSlices + 5 {
		spec.Points = append(spec.Points, chart.Point{Label: string(rune('a' + i)), Value: 1})
	}
	out := pieChart(spec)
	if !strings.Contains(out, "Other") {
		t.Errorf("expected an Other slice, got:\n%s", out)
	}
	if strings.Contains(out, `"q"`) {
		t.Errorf("expected late slices to be merged, got:\n%s", out)
	}
}

// TestHTMLWriter tests HTML output.
func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	res := withFailures(createTestResult(t, testDataset()))

	var buf bytes.Buffer
	w := NewHTMLWriter(&buf, WithChartImages(chart.NewPNGRenderer(t.TempDir(), chart.WithSize(300, 200))))
	if _, err := w.Write(res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := html.Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("invalid HTML: %v", err)
	}

	var sections, images int
	var cells []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "section":
				sections++
			case "img":
				for _, a := range n.Attr {
					if a.Key == "src" && strings.HasPrefix(a.Val, "data:image/png;base64,") {
						images++
					}
				}
			case "td":
				if n.FirstChild != nil {
					cells = append(cells, n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if sections != 8 {
		t.Errorf("expected 8 sections, got %d", sections)
	}
	if images != 5 {
		t.Errorf("expected 5 embedded charts, got %d", images)
	}
	found := false
	for _, c := range cells {
		if c == "1,234,567.50" {
			found = true
		}
	}
	if !found {
		t.Error("expected the formatted amount in a cell")
	}
	if !strings.HasPrefix(buf.String(), "<!DOCTYPE html>") {
		t.Errorf("expected a doctype, got %q", buf.String()[:20])
	}
}

// TestXLSXWriter tests workbook output.
func TestXLSXWriter(t *testing.T) {
	t.Parallel()

	res := withFailures(createTestResult(t, testDataset()))

	var buf bytes.Buffer
	n, err := NewXLSXWriter(&buf).Write(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("invalid workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 7 || sheets[0] != runSheet {
		t.Errorf("expected Run plus 6 report sheets, got %v", sheets)
	}

	rows, err := f.GetRows(analysis.NameRevenueByCompany)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 4 || rows[0][0] != model.ColumnCompanyName || rows[1][0] != "Acme" {
		t.Errorf("unexpected rows: %v", rows)
	}

	v, err := f.GetCellValue(runSheet, "B1")
	if err != nil || v != res.Run.ID {
		t.Errorf("expected run ID in B1, got %q (%v)", v, err)
	}
}

func TestExcelChart(t *testing.T) {
	t.Parallel()

	res := createTestResult(t, testDataset())
	for _, o := range res.Outcomes {
		if o.Chart == nil {
			continue
		}
		c, ok := excelChart(sheetName(o.Report), o.Summary, o.Chart)
		if !ok {
			t.Errorf("%s: expected an Excel chart", o.Report)
			continue
		}
		if len(c.Series) != 1 || c.Series[0].Values == "" || c.Series[0].Categories == "" {
			t.Errorf("%s: incomplete series %+v", o.Report, c.Series)
		}
		if o.Chart.Kind == chart.KindDonut && c.HoleSize != 40 {
			t.Errorf("expected a 40%% hole, got %d", c.HoleSize)
		}
		if o.Chart.Kind == chart.KindBubble && c.YAxis.LogBase != 10 {
			t.Errorf("expected a log axis, got %v", c.YAxis.LogBase)
		}
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	res := createTestResult(t, testDataset())
	var a, b bytes.Buffer
	n, err := NewMultiWriter(NewJSONWriter(&a), NewSimpleWriter(&b)).Write(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() == 0 || b.Len() == 0 || n != a.Len()+b.Len() {
		t.Errorf("expected both writers to be used, got %d, %d and %d", a.Len(), b.Len(), n)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"text", "json", "markdown", "html", "xlsx", "MARKDOWN"} {
		if _, err := New(format, &bytes.Buffer{}, Options{}); err != nil {
			t.Errorf("format %q: unexpected error: %v", format, err)
		}
	}
	if _, err := New("pdf", &bytes.Buffer{}, Options{}); err == nil {
		t.Error("expected error for unknown format")
	}
}
