package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// NullValues are the cell texts read as missing, besides the empty string.
var NullValues = []string{"", "NA", "N/A", "NaN", "null", "NULL", "None", "<nil>"}

// utf8BOM is stripped from the start of CSV input; spreadsheet exports
// often carry one and it would otherwise end up in the first header.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV decodes CSV bytes into a raw table.
// All columns are read as strings; typing is done by the caller.
func readCSV(data []byte) (*rawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NullValues),
	)
	if df.Err != nil {
		// gota refuses frames without data rows. A header-only file is a
		// valid, empty table.
		return headerOnly(data, df.Err)
	}

	names := df.Names()
	table := &rawTable{header: names, rows: make([][]cell, df.Nrow())}
	for i := range table.rows {
		table.rows[i] = make([]cell, len(names))
	}
	for j, name := range names {
		col := df.Col(name)
		values := col.Records()
		nulls := col.IsNaN()
		for i := range values {
			if nulls[i] {
				table.rows[i][j] = cell{null: true}
				continue
			}
			table.rows[i][j] = cell{value: values[i]}
		}
	}
	return table, nil
}

// headerOnly returns an empty table when data holds just a header line.
// Any other shape reports cause.
func headerOnly(data []byte, cause error) (*rawTable, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	switch len(records) {
	case 0:
		return nil, ErrNoHeader
	case 1:
		return &rawTable{header: records[0]}, nil
	default:
		return nil, fmt.Errorf("failed to parse CSV: %w", cause)
	}
}
