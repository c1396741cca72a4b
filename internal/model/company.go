package model

import "slices"

// Canonical column names. Source headers are mapped to these names by the
// dataset loaders before any report looks at a table.
const (
	ColumnCompanyName = "Company_Name"
	ColumnCity        = "City"
	ColumnState       = "State"
	ColumnPostalCode  = "Postal_Code"
	ColumnRevenue     = "Revenue"
	ColumnIndustry    = "Industry"
	ColumnJobTitle    = "Job_Title"
)

// CompanyColumns lists every canonical column of the company table.
var CompanyColumns = []string{
	ColumnCompanyName,
	ColumnCity,
	ColumnState,
	ColumnPostalCode,
	ColumnRevenue,
	ColumnIndustry,
}

// Company is one row of the company table.
// Name is not necessarily unique across rows.
type Company struct {
	Name       string  `json:"Company_Name"`
	City       string  `json:"City"`
	State      string  `json:"State"`
	PostalCode string  `json:"Postal_Code"`
	Revenue    Revenue `json:"Revenue"`
	Industry   string  `json:"Industry"`
}

// CompanyTable is an immutable company dataset.
type CompanyTable struct {
	// Columns holds the canonical names of the columns present in the source,
	// in source order. A report needing a column that is absent fails with a
	// MissingColumnError even when the corresponding field is zero-valued.
	Columns []string

	// Rows holds the records in source order.
	Rows []Company
}

// NewCompanyTable builds a table from rows, declaring all canonical columns.
// It is mostly useful for tests and programmatic callers.
func NewCompanyTable(rows ...Company) CompanyTable {
	return CompanyTable{
		Columns: slices.Clone(CompanyColumns),
		Rows:    rows,
	}
}

// HasColumn reports whether the table carries the named column.
func (t CompanyTable) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Len returns the number of rows.
func (t CompanyTable) Len() int {
	return len(t.Rows)
}

// Clone returns a deep copy of the table.
func (t CompanyTable) Clone() CompanyTable {
	return CompanyTable{
		Columns: slices.Clone(t.Columns),
		Rows:    slices.Clone(t.Rows),
	}
}

// RequireColumns returns a MissingColumnError for the first column in names
// that the table does not carry.
func (t CompanyTable) RequireColumns(report string, names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return &MissingColumnError{Report: report, Column: name}
		}
	}
	return nil
}
