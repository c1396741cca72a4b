package dataset

import (
	"slices"
	"strings"

	"github.com/nao1215/corpreport/internal/model"
)

// cell is one source value. null is set for empty cells and null markers.
type cell struct {
	value string
	null  bool
}

// rawTable is a decoded source before it is typed.
type rawTable struct {
	header []string
	rows   [][]cell
}

// canonicalNames are the column names reports understand.
var canonicalNames = slices.Concat(model.CompanyColumns, model.PeopleColumns)

// ColumnMapper turns source headers into canonical column names.
type ColumnMapper struct {
	mapping map[string]string
}

// NewColumnMapper returns a mapper for the given source-to-canonical pairs.
// Keys are matched after trimming surrounding whitespace.
func NewColumnMapper(mapping map[string]string) ColumnMapper {
	m := make(map[string]string, len(mapping))
	for src, dst := range mapping {
		m[strings.TrimSpace(src)] = strings.TrimSpace(dst)
	}
	return ColumnMapper{mapping: m}
}

// Canonical returns the canonical name for a source header.
// Explicit mappings win; otherwise a header equal to a canonical name
// ignoring case is normalized to it, and anything else is returned trimmed.
func (c ColumnMapper) Canonical(header string) string {
	h := strings.TrimSpace(header)
	if dst, ok := c.mapping[h]; ok {
		return dst
	}
	for _, name := range canonicalNames {
		if strings.EqualFold(h, name) {
			return name
		}
	}
	return h
}

// columnIndex maps canonical names to the first source column carrying them.
func (t *rawTable) columnIndex(mapper ColumnMapper) (map[string]int, []string) {
	index := make(map[string]int, len(t.header))
	order := make([]string, 0, len(t.header))
	for i, h := range t.header {
		name := mapper.Canonical(h)
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = i
		order = append(order, name)
	}
	return index, order
}

// get returns the cell at column name, or a null cell when absent.
func (t *rawTable) get(row []cell, index map[string]int, name string) cell {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return cell{null: true}
	}
	return row[i]
}

// companies types the table as company rows.
func (t *rawTable) companies(mapper ColumnMapper) model.CompanyTable {
	index, order := t.columnIndex(mapper)
	table := model.CompanyTable{Columns: keep(order, model.CompanyColumns)}
	table.Rows = make([]model.Company, 0, len(t.rows))
	for _, row := range t.rows {
		text := func(name string) string {
			c := t.get(row, index, name)
			if c.null {
				return ""
			}
			return c.value
		}
		revenue := model.MissingRevenue()
		if c := t.get(row, index, model.ColumnRevenue); !c.null {
			revenue = model.ParseRevenue(c.value)
		}
		table.Rows = append(table.Rows, model.Company{
			Name:       text(model.ColumnCompanyName),
			City:       text(model.ColumnCity),
			State:      text(model.ColumnState),
			PostalCode: text(model.ColumnPostalCode),
			Revenue:    revenue,
			Industry:   text(model.ColumnIndustry),
		})
	}
	return table
}

// people types the table as people rows.
func (t *rawTable) people(mapper ColumnMapper) model.PeopleTable {
	index, order := t.columnIndex(mapper)
	table := model.PeopleTable{Columns: keep(order, model.PeopleColumns)}
	table.Rows = make([]model.Person, 0, len(t.rows))
	for _, row := range t.rows {
		c := t.get(row, index, model.ColumnJobTitle)
		table.Rows = append(table.Rows, model.Person{JobTitle: c.value, HasJobTitle: !c.null})
	}
	return table
}

// keep returns the names in order that are also in known.
func keep(order, known []string) []string {
	out := make([]string, 0, len(known))
	for _, name := range order {
		if slices.Contains(known, name) {
			out = append(out, name)
		}
	}
	return out
}
