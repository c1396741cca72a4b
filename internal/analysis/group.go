package analysis

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
)

// orderedGroups accumulates a value per key and remembers the order in
// which keys were first seen. Rankings sort it stably, so ties keep that
// order.
type orderedGroups[K comparable, V any] struct {
	keys   []K
	index  map[K]int
	values []V
}

func newOrderedGroups[K comparable, V any]() *orderedGroups[K, V] {
	return &orderedGroups[K, V]{index: make(map[K]int)}
}

// update applies fn to the accumulator of key, creating it on first use.
func (g *orderedGroups[K, V]) update(key K, fn func(*V)) {
	i, ok := g.index[key]
	if !ok {
		i = len(g.keys)
		g.index[key] = i
		g.keys = append(g.keys, key)
		var zero V
		g.values = append(g.values, zero)
	}
	fn(&g.values[i])
}

// each calls fn for every group in first-seen order.
func (g *orderedGroups[K, V]) each(fn func(K, V)) {
	for i, k := range g.keys {
		fn(k, g.values[i])
	}
}

// len returns the number of groups.
func (g *orderedGroups[K, V]) len() int {
	return len(g.keys)
}

// isBlank reports whether a grouping key is missing.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// compareBlankLast orders strings ascending with blank values last.
func compareBlankLast(a, b string) int {
	switch ab, bb := isBlank(a), isBlank(b); {
	case ab && bb:
		return 0
	case ab:
		return 1
	case bb:
		return -1
	}
	return cmp.Compare(a, b)
}

// topN returns at most n leading elements of s. n <= 0 keeps everything.
func topN[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

// newSummary wraps typed rows into a Summary.
func newSummary[T model.Row](report, title string, header []string, rows []T) *model.Summary {
	s := &model.Summary{
		Report: report,
		Title:  title,
		Header: slices.Clone(header),
		Rows:   make([]model.Row, len(rows)),
	}
	for i, r := range rows {
		s.Rows[i] = r
	}
	return s
}

// companies returns the company table of ds, or an empty table.
func companies(ds *model.Dataset) model.CompanyTable {
	if ds == nil {
		return model.CompanyTable{}
	}
	return ds.Companies
}

// people returns the people table of ds, or an empty table.
func people(ds *model.Dataset) model.PeopleTable {
	if ds == nil {
		return model.PeopleTable{}
	}
	return ds.People
}

// rowsOf returns the rows of s as T. It fails when s holds rows of
// another report.
func rowsOf[T model.Row](s *model.Summary) ([]T, error) {
	out := make([]T, 0, s.Len())
	for i, r := range s.Rows {
		v, ok := r.(T)
		if !ok {
			return nil, fmt.Errorf("%w: row %d of %s has type %T", chart.ErrInvalidChart, i+1, s.Report, r)
		}
		out = append(out, v)
	}
	return out, nil
}

// descending orders numbers from largest to smallest.
func descending[T cmp.Ordered](a, b T) int {
	return cmp.Compare(b, a)
}
