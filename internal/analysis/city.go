package analysis

import (
	"fmt"
	"slices"

	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
)

// TopCompaniesByCity counts companies per city and keeps the top N.
// Percentages are shares of the top N total, not of every company.
func TopCompaniesByCity() Report {
	return Report{
		Name:      NameTopCities,
		Title:     citiesTitle(DefaultTopN),
		Input:     model.InputCompanies,
		Columns:   []string{model.ColumnCity},
		Aggregate: aggregateTopCities,
		Describe:  describeTopCities,
	}
}

func aggregateTopCities(ds *model.Dataset, p Params) (*model.Summary, error) {
	table := companies(ds)
	if err := table.RequireColumns(NameTopCities, model.ColumnCity); err != nil {
		return nil, err
	}

	groups := newOrderedGroups[string, int]()
	for _, c := range table.Rows {
		if isBlank(c.City) {
			continue
		}
		groups.update(c.City, func(n *int) { *n++ })
	}

	rows := make([]model.CityCount, 0, groups.len())
	groups.each(func(city string, n int) {
		rows = append(rows, model.CityCount{City: city, CompanyCount: n})
	})
	slices.SortStableFunc(rows, func(a, b model.CityCount) int {
		return descending(a.CompanyCount, b.CompanyCount)
	})
	rows = topN(rows, p.topN())

	counts := make([]int64, len(rows))
	for i, r := range rows {
		counts[i] = int64(r.CompanyCount)
	}
	for i, pct := range model.Percentages(counts) {
		rows[i].Percentage = pct
	}

	return newSummary(NameTopCities, citiesTitle(p.topN()), model.CityCountHeader, rows), nil
}

func citiesTitle(n int) string {
	return fmt.Sprintf("Top %d Cities by Company Count", n)
}

func describeTopCities(s *model.Summary) (*chart.Spec, error) {
	rows, err := rowsOf[model.CityCount](s)
	if err != nil {
		return nil, err
	}
	spec := &chart.Spec{
		Kind:    chart.KindDonut,
		Title:   s.Title,
		Palette: slices.Clone(chart.DefaultDonutPalette),
		Hole:    0.4,
		Hover:   "%{label}: %{value} companies (%{percent})",
	}
	for _, r := range rows {
		spec.Points = append(spec.Points, chart.Point{Label: r.City, Value: float64(r.CompanyCount)})
	}
	// Every slice tied for the largest count is pulled out.
	spec.Pull = make([]float64, len(spec.Points))
	if len(rows) > 0 {
		top := rows[0].CompanyCount
		for i, r := range rows {
			if r.CompanyCount == top {
				spec.Pull[i] = 0.1
			}
		}
	}
	return spec, nil
}
