package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/olekukonko/tablewriter"

	"github.com/nao1215/corpreport/internal/model"
	"github.com/nao1215/corpreport/internal/pipeline"
)

// measureEpsilon is the smallest difference reported as a change.
const measureEpsilon = 1e-9

// Comparison holds the differences of one report between two snapshots.
type Comparison struct {
	// Report is the compared report name.
	Report string `json:"report"`

	// Title is the report title of the newer snapshot.
	Title string `json:"title"`

	// Before and After describe the two runs.
	Before model.RunInfo `json:"before"`
	After  model.RunInfo `json:"after"`

	// Identical is true when both snapshots have the same fingerprints.
	// The report is not computed in that case.
	Identical bool `json:"identical"`

	// Header is the report's output columns.
	Header []string `json:"columns,omitempty"`

	// Added holds rows only present after, in their order.
	Added []RowChange `json:"added,omitempty"`

	// Removed holds rows only present before, in their order.
	Removed []RowChange `json:"removed,omitempty"`

	// Changed holds rows whose cells differ, in the newer order.
	Changed []RowChange `json:"changed,omitempty"`

	// UnchangedCount is the number of rows present and equal in both.
	UnchangedCount int `json:"unchanged_count"`
}

// RowChange is one added, removed or changed row.
type RowChange struct {
	// Key identifies the row across snapshots.
	Key string `json:"key"`

	// Before and After hold the formatted cells. One of them is empty
	// for added and removed rows.
	Before []string `json:"before,omitempty"`
	After  []string `json:"after,omitempty"`

	// Deltas maps each numeric column to after minus before. Added rows
	// count from zero and removed rows to zero.
	Deltas map[string]float64 `json:"deltas,omitempty"`
}

// HasChanges reports whether the snapshots differ.
func (c *Comparison) HasChanges() bool {
	return len(c.Added)+len(c.Removed)+len(c.Changed) > 0
}

// SameSources reports whether two source lists have the same fingerprints
// in the same order.
func SameSources(a, b []model.SourceInfo) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Fingerprint == "" || a[i].Fingerprint != b[i].Fingerprint {
			return false
		}
	}
	return true
}

// NewIdenticalComparison returns the comparison of two snapshots with the
// same fingerprints.
func NewIdenticalComparison(report string, before, after model.RunInfo) *Comparison {
	return &Comparison{Report: report, Title: report, Before: before, After: after, Identical: true}
}

// Compare computes the row differences of report between two results.
// Rows are matched by their key.
func Compare(report string, before, after *pipeline.Result) (*Comparison, error) {
	prev, err := summaryOf(report, before)
	if err != nil {
		return nil, fmt.Errorf("before: %w", err)
	}
	curr, err := summaryOf(report, after)
	if err != nil {
		return nil, fmt.Errorf("after: %w", err)
	}

	c := &Comparison{
		Report: report,
		Title:  curr.Title,
		Before: before.Run,
		After:  after.Run,
		Header: curr.Header,
	}

	prevKeys := occurrenceKeys(prev.Rows)
	prevRows := make(map[string]model.Row, len(prev.Rows))
	for i, r := range prev.Rows {
		prevRows[prevKeys[i]] = r
	}
	currKeys := occurrenceKeys(curr.Rows)
	seen := make(map[string]bool, len(curr.Rows))

	for i, r := range curr.Rows {
		key := currKeys[i]
		seen[key] = true

		old, ok := prevRows[key]
		if !ok {
			c.Added = append(c.Added, RowChange{
				Key:    key,
				After:  formatRow(r),
				Deltas: deltas(curr, nil, r),
			})
			continue
		}
		was, now := formatRow(old), formatRow(r)
		d := deltas(curr, prev.Measures(old), r)
		if slices.Equal(was, now) && len(d) == 0 {
			c.UnchangedCount++
			continue
		}
		c.Changed = append(c.Changed, RowChange{Key: key, Before: was, After: now, Deltas: d})
	}

	for i, r := range prev.Rows {
		if seen[prevKeys[i]] {
			continue
		}
		d := make(map[string]float64)
		for col, v := range prev.Measures(r) {
			d[col] = -v
		}
		c.Removed = append(c.Removed, RowChange{Key: prevKeys[i], Before: formatRow(r), Deltas: d})
	}
	return c, nil
}

// occurrenceKeys returns the match key of each row. A key seen before gets
// its occurrence number appended, so repeated rows pair up in order.
func occurrenceKeys(rows []model.Row) []string {
	keys := make([]string, len(rows))
	count := make(map[string]int, len(rows))
	for i, r := range rows {
		k := r.Key()
		count[k]++
		if n := count[k]; n > 1 {
			k = fmt.Sprintf("%s #%d", k, n)
		}
		keys[i] = k
	}
	return keys
}

func summaryOf(report string, res *pipeline.Result) (*model.Summary, error) {
	o, ok := res.Outcome(report)
	if !ok {
		return nil, fmt.Errorf("report %s did not run", report)
	}
	if o.Summary == nil {
		if err := o.Error(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("report %s has no summary", report)
	}
	return o.Summary, nil
}

// deltas returns the non-zero differences of r's measures against prev.
// A nil prev counts from zero.
func deltas(s *model.Summary, prev map[string]float64, r model.Row) map[string]float64 {
	d := make(map[string]float64)
	for col, v := range s.Measures(r) {
		if diff := v - prev[col]; math.Abs(diff) > measureEpsilon {
			d[col] = diff
		}
	}
	if len(d) == 0 {
		return nil
	}
	return d
}

func formatRow(r model.Row) []string {
	values := r.Values()
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = model.FormatValue(v)
	}
	return cells
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta float64) string {
	switch {
	case delta > 0:
		return "+" + humanize.FormatFloat("#,###.##", delta)
	case delta < 0:
		return humanize.FormatFloat("#,###.##", delta)
	default:
		return "0"
	}
}

// formatDeltas joins the deltas in header order.
func formatDeltas(header []string, d map[string]float64) string {
	parts := make([]string, 0, len(d))
	for _, col := range header {
		if v, ok := d[col]; ok {
			parts = append(parts, col+" "+formatDelta(v))
		}
	}
	return strings.Join(parts, ", ")
}

// WriteComparisonJSON writes c as indented JSON.
func WriteComparisonJSON(w io.Writer, c *Comparison) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(c)
}

// WriteComparisonText writes c in human-readable text format.
func WriteComparisonText(w io.Writer, c *Comparison) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Report Comparison: %s\n", c.Title)
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Before: %s\n", describeSources(c.Before))
	fmt.Fprintf(&sb, "After:  %s\n", describeSources(c.After))

	if c.Identical || !c.HasChanges() {
		sb.WriteString("\nNo changes\n")
		if c.UnchangedCount > 0 {
			fmt.Fprintf(&sb, "Unchanged: %d rows\n", c.UnchangedCount)
		}
		_, err := io.WriteString(w, sb.String())
		return err
	}

	table := tablewriter.NewWriter(&sb)
	table.Header([]string{"", "Row", "Before", "After", "Delta"})
	add := func(mark string, ch RowChange) error {
		return table.Append([]string{
			mark,
			truncateString(ch.Key, 40),
			strings.Join(ch.Before, " | "),
			strings.Join(ch.After, " | "),
			formatDeltas(c.Header, ch.Deltas),
		})
	}
	for _, ch := range c.Added {
		if err := add("+", ch); err != nil {
			return err
		}
	}
	for _, ch := range c.Removed {
		if err := add("-", ch); err != nil {
			return err
		}
	}
	for _, ch := range c.Changed {
		if err := add("~", ch); err != nil {
			return err
		}
	}
	sb.WriteString("\n")
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(&sb, "\nAdded: %d, Removed: %d, Changed: %d, Unchanged: %d\n",
		len(c.Added), len(c.Removed), len(c.Changed), c.UnchangedCount)
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteComparisonMarkdown writes c in Markdown format.
func WriteComparisonMarkdown(w io.Writer, c *Comparison) error {
	md := markdown.NewMarkdown(w)
	md.H1("Report Comparison: " + c.Title)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Snapshot", "Sources", "Run"},
		Rows: [][]string{
			{"Before", describeSources(c.Before), "`" + c.Before.ID + "`"},
			{"After", describeSources(c.After), "`" + c.After.ID + "`"},
		},
	})
	md.PlainText("")

	if c.Identical || !c.HasChanges() {
		md.Tip("No changes")
		return md.Build()
	}

	section := func(title string, changes []RowChange, strike bool) {
		if len(changes) == 0 {
			return
		}
		md.H2(fmt.Sprintf("%s (%d)", title, len(changes)))
		md.PlainText("")
		rows := make([][]string, len(changes))
		for i, ch := range changes {
			key := ch.Key
			if strike {
				key = markdown.Strikethrough(key)
			}
			rows[i] = []string{key, strings.Join(ch.Before, " / "), strings.Join(ch.After, " / "), formatDeltas(c.Header, ch.Deltas)}
		}
		md.Table(markdown.TableSet{Header: []string{"Row", "Before", "After", "Delta"}, Rows: rows})
		md.PlainText("")
	}
	section("Added Rows", c.Added, false)
	section("Removed Rows", c.Removed, true)
	section("Changed Rows", c.Changed, false)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*%d rows unchanged*", c.UnchangedCount)
	return md.Build()
}

func describeSources(run model.RunInfo) string {
	parts := make([]string, len(run.Sources))
	for i, src := range run.Sources {
		parts[i] = fmt.Sprintf("%s (%s)", src.Path, src.ShortFingerprint())
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
