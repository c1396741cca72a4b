package model

import "slices"

// PeopleColumns lists every canonical column of the people table.
var PeopleColumns = []string{ColumnJobTitle}

// Person is one row of the people table.
type Person struct {
	// JobTitle is the raw title as it appears in the source.
	JobTitle string `json:"Job_Title"`

	// HasJobTitle is false when the source cell was null.
	HasJobTitle bool `json:"-"`
}

// NewPerson returns a Person with a non-null job title.
func NewPerson(title string) Person {
	return Person{JobTitle: title, HasJobTitle: true}
}

// PeopleTable is an immutable people dataset.
type PeopleTable struct {
	Columns []string
	Rows    []Person
}

// NewPeopleTable builds a table from rows, declaring all canonical columns.
func NewPeopleTable(rows ...Person) PeopleTable {
	return PeopleTable{
		Columns: slices.Clone(PeopleColumns),
		Rows:    rows,
	}
}

// HasColumn reports whether the table carries the named column.
func (t PeopleTable) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Len returns the number of rows.
func (t PeopleTable) Len() int {
	return len(t.Rows)
}

// RequireColumns returns a MissingColumnError for the first column in names
// that the table does not carry.
func (t PeopleTable) RequireColumns(report string, names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return &MissingColumnError{Report: report, Column: name}
		}
	}
	return nil
}
