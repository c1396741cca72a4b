package dataset

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readXLSX decodes the named sheet (or the first one) of a workbook.
// The first non-empty row is the header. Empty cells are missing values,
// and an empty row after the header is a row of missing values.
func readXLSX(data []byte, sheet string) (*rawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, ErrNoHeader
		}
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	table := &rawTable{}
	for _, row := range rows {
		if table.header == nil {
			if !isBlankRow(row) {
				table.header = row
			}
			continue
		}
		cells := make([]cell, len(table.header))
		for i := range cells {
			if i >= len(row) || isNull(row[i]) {
				cells[i] = cell{null: true}
				continue
			}
			cells[i] = cell{value: row[i]}
		}
		table.rows = append(table.rows, cells)
	}
	if table.header == nil {
		return nil, ErrNoHeader
	}
	return table, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// isNull reports whether v is one of the null markers.
func isNull(v string) bool {
	return slices.Contains(NullValues, v)
}
