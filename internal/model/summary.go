package model

import (
	"strings"
	"time"
)

// Row is one line of a summary table.
//
// Concrete rows are plain structs with JSON tags that use the output column
// names, so encoding a Summary yields the same shape as the table.
type Row interface {
	// Key identifies the row when two runs of the same report are compared.
	Key() string

	// Values returns the cells in header order. Cells are string, int,
	// float64 or nil (missing).
	Values() []any
}

// Summary is the derived, read-only result of one report.
type Summary struct {
	// Report is the stable report identifier (e.g. "Revenue_by_Company").
	Report string `json:"report"`

	// Title is the human-readable title.
	Title string `json:"title"`

	// Header holds the output column names.
	Header []string `json:"columns"`

	// Rows holds the ordered rows.
	Rows []Row `json:"rows"`
}

// Len returns the number of rows.
func (s *Summary) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Records returns every row formatted as display strings.
func (s *Summary) Records() [][]string {
	records := make([][]string, 0, s.Len())
	for _, r := range s.Rows {
		values := r.Values()
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = FormatValue(v)
		}
		records = append(records, cells)
	}
	return records
}

// Measures returns the numeric cells of r keyed by column name.
func (s *Summary) Measures(r Row) map[string]float64 {
	measures := make(map[string]float64)
	for i, v := range r.Values() {
		if i >= len(s.Header) {
			break
		}
		switch n := v.(type) {
		case int:
			measures[s.Header[i]] = float64(n)
		case float64:
			measures[s.Header[i]] = n
		}
	}
	return measures
}

// RunInfo describes one invocation that produced a set of summaries.
type RunInfo struct {
	// ID is a random identifier for the run.
	ID string `json:"id"`

	// GeneratedAt is when the run started.
	GeneratedAt time.Time `json:"generated_at"`

	// Sources lists the input tables.
	Sources []SourceInfo `json:"sources,omitempty"`
}

// SourceInfo describes an input table.
type SourceInfo struct {
	// Path is the file the table was read from.
	Path string `json:"path"`

	// Format is the loader that read it ("csv", "xlsx", "sqlite").
	Format string `json:"format"`

	// Fingerprint is the hex SHA3-256 digest of the source bytes.
	Fingerprint string `json:"fingerprint"`

	// Rows is the number of records read.
	Rows int `json:"rows"`
}

// ShortFingerprint returns the first 12 hex digits of the fingerprint.
func (s SourceInfo) ShortFingerprint() string {
	if len(s.Fingerprint) <= 12 {
		return s.Fingerprint
	}
	return s.Fingerprint[:12]
}

// joinKey builds a composite row key.
func joinKey(parts ...string) string {
	return strings.Join(parts, "|")
}
