package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
	"github.com/nao1215/corpreport/internal/pipeline"
)

const (
	// runSheet holds the run metadata.
	runSheet = "Run"

	// maxSheetName is Excel's limit on sheet name length.
	maxSheetName = 31

	// Built-in Excel number formats.
	numFmtThousands = 3 // #,##0
	numFmtAmount    = 4 // #,##0.00
)

// XLSXWriter outputs a workbook with one sheet per report. Each sheet holds
// the summary table and, unless disabled, a native Excel chart.
type XLSXWriter struct {
	baseWriter

	charts bool
}

// XLSXWriterOption configures an XLSXWriter.
type XLSXWriterOption func(*XLSXWriter)

// WithNativeCharts enables or disables Excel charts. Enabled by default.
func WithNativeCharts(enabled bool) XLSXWriterOption {
	return func(w *XLSXWriter) {
		w.charts = enabled
	}
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer, opts ...XLSXWriterOption) *XLSXWriter {
	w := &XLSXWriter{baseWriter: newBaseWriter(output), charts: true}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// xlsxStyles holds the style IDs registered in one workbook.
type xlsxStyles struct {
	header    int
	thousands int
	amount    int
}

// Write outputs the result as an XLSX workbook.
func (w *XLSXWriter) Write(res *pipeline.Result) (int, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	styles, err := newXLSXStyles(f)
	if err != nil {
		return 0, err
	}

	if err := f.SetSheetName("Sheet1", runSheet); err != nil {
		return 0, fmt.Errorf("failed to create run sheet: %w", err)
	}
	if err := writeRunSheet(f, res, styles); err != nil {
		return 0, err
	}

	for _, o := range res.Outcomes {
		if o.Summary == nil {
			continue
		}
		if err := w.writeSheet(f, o, styles); err != nil {
			return 0, fmt.Errorf("failed to write sheet %s: %w", o.Report, err)
		}
	}
	f.SetActiveSheet(0)

	cw := &countingWriter{w: w.output}
	if err := f.Write(cw); err != nil {
		return cw.n, fmt.Errorf("failed to write workbook: %w", err)
	}
	return cw.n, nil
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	var s xlsxStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F4F4F4"}},
	}); err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	if s.thousands, err = f.NewStyle(&excelize.Style{NumFmt: numFmtThousands}); err != nil {
		return s, fmt.Errorf("failed to create number style: %w", err)
	}
	if s.amount, err = f.NewStyle(&excelize.Style{NumFmt: numFmtAmount}); err != nil {
		return s, fmt.Errorf("failed to create amount style: %w", err)
	}
	return s, nil
}

// writeRunSheet writes the run metadata and one line per report status.
func writeRunSheet(f *excelize.File, res *pipeline.Result, styles xlsxStyles) error {
	rows := [][]any{
		{"Run", res.Run.ID},
		{"Generated", res.Run.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{},
		{"Source", "Format", "Rows", "SHA3-256"},
	}
	for _, src := range res.Run.Sources {
		rows = append(rows, []any{src.Path, src.Format, src.Rows, src.Fingerprint})
	}
	rows = append(rows, []any{}, []any{"Report", "Status", "Rows", "Error"})
	for _, o := range res.Outcomes {
		msg := ""
		if err := o.Error(); err != nil {
			msg = err.Error()
		}
		rows = append(rows, []any{o.Report, string(statusOf(o)), o.Summary.Len(), msg})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(runSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write run sheet: %w", err)
		}
		if len(row) == 4 && (row[0] == "Source" || row[0] == "Report") {
			if err := f.SetCellStyle(runSheet, cell, "D"+strconv.Itoa(i+1), styles.header); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(runSheet, "A", "A", 32)
}

// writeSheet writes one summary and its chart.
func (w *XLSXWriter) writeSheet(f *excelize.File, o analysis.Outcome, styles xlsxStyles) error {
	sheet := sheetName(o.Report)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	s := o.Summary
	header := make([]any, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(s.Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, styles.header); err != nil {
		return err
	}

	for i, r := range s.Rows {
		values := r.Values()
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	if err := styleColumns(f, sheet, s, styles); err != nil {
		return err
	}

	if !w.charts || o.Chart == nil || s.Len() == 0 {
		return nil
	}
	c, ok := excelChart(sheet, s, o.Chart)
	if !ok {
		return nil
	}
	anchor, err := excelize.CoordinatesToCellName(len(s.Header)+2, 2)
	if err != nil {
		return err
	}
	return f.AddChart(sheet, anchor, c)
}

// styleColumns applies number formats by the type of the first row's cells
// and widens the text columns.
func styleColumns(f *excelize.File, sheet string, s *model.Summary, styles xlsxStyles) error {
	if s.Len() == 0 {
		return nil
	}
	for i, v := range s.Rows[0].Values() {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		style := 0
		switch v.(type) {
		case int:
			style = styles.thousands
		case float64, nil:
			style = styles.amount
		case string:
			if err := f.SetColWidth(sheet, col, col, 24); err != nil {
				return err
			}
		}
		if style == 0 {
			continue
		}
		if err := f.SetCellStyle(sheet, col+"2", col+strconv.Itoa(s.Len()+1), style); err != nil {
			return err
		}
	}
	return nil
}

// excelChart maps a chart description onto a native Excel chart over the
// sheet's cells. Excel has no treemap in this API, so treemaps become
// column charts over two-level categories.
func excelChart(sheet string, s *model.Summary, spec *chart.Spec) (*excelize.Chart, bool) {
	n := s.Len()
	column := func(name string) (string, bool) {
		i := slices.Index(s.Header, name)
		if i < 0 {
			return "", false
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return "", false
		}
		return fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, n+1), true
	}
	span := func(from, to string) (string, bool) {
		a, b := slices.Index(s.Header, from), slices.Index(s.Header, to)
		if a < 0 || b < 0 {
			return "", false
		}
		ca, _ := excelize.ColumnNumberToName(a + 1)
		cb, _ := excelize.ColumnNumberToName(b + 1)
		return fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, ca, cb, n+1), true
	}

	c := &excelize.Chart{
		Title:     []excelize.RichTextRun{{Text: spec.Title}},
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{Width: 720, Height: 420},
	}
	var series excelize.ChartSeries
	var ok1, ok2 bool

	switch spec.Kind {
	case chart.KindBar:
		c.Type = excelize.Col
		c.PlotArea.ShowVal = spec.ValueLabels
		series.Categories, ok1 = column(s.Header[0])
		series.Values, ok2 = column(s.Header[len(s.Header)-1])
	case chart.KindHBar:
		c.Type = excelize.Bar
		c.YAxis.ReverseOrder = true
		series.Categories, ok1 = column(model.ColumnCompanyName)
		series.Values, ok2 = column(model.ColumnTotalRevenue)
	case chart.KindDonut:
		c.Type = excelize.Doughnut
		c.HoleSize = int(spec.Hole * 100)
		c.Legend = excelize.ChartLegend{Position: "right"}
		c.PlotArea.ShowPercent = true
		series.Categories, ok1 = column(s.Header[0])
		series.Values, ok2 = column(model.ColumnCompanyCount)
	case chart.KindBubble:
		c.Type = excelize.Bubble
		if spec.LogY {
			c.YAxis.LogBase = 10
		}
		series.Categories, ok1 = column(model.ColumnPercentage)
		series.Values, ok2 = column(model.ColumnTotalRevenue)
		series.Sizes = series.Values
	case chart.KindTreemap:
		c.Type = excelize.Col
		series.Categories, ok1 = span(model.ColumnState, model.ColumnIndustry)
		series.Values, ok2 = column(model.ColumnTotalRevenue)
	default:
		return nil, false
	}
	if !ok1 || !ok2 {
		return nil, false
	}
	series.Name = fmt.Sprintf("'%s'!$A$1", sheet)
	c.Series = []excelize.ChartSeries{series}
	return c, true
}

// sheetName fits a report name into Excel's sheet name limit.
func sheetName(report string) string {
	return truncateString(report, maxSheetName)
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
