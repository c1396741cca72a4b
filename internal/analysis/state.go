package analysis

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
)

const stateTitle = "Revenue by Industry for Each State"

type stateIndustry struct {
	state    string
	industry string
}

// RevenueIndustriesByState sums revenue per (State, Industry).
func RevenueIndustriesByState() Report {
	return Report{
		Name:      NameRevenueByState,
		Title:     stateTitle,
		Input:     model.InputCompanies,
		Columns:   []string{model.ColumnState, model.ColumnIndustry, model.ColumnRevenue},
		Aggregate: aggregateRevenueByState,
		Describe:  describeRevenueByState,
	}
}

func aggregateRevenueByState(ds *model.Dataset, _ Params) (*model.Summary, error) {
	// Private copy; the caller's rows stay untouched.
	table := companies(ds).Clone()
	if err := table.RequireColumns(NameRevenueByState, model.ColumnState, model.ColumnIndustry, model.ColumnRevenue); err != nil {
		return nil, err
	}

	groups := newOrderedGroups[stateIndustry, decimal.Decimal]()
	for _, c := range table.Rows {
		if isBlank(c.State) || isBlank(c.Industry) {
			continue
		}
		groups.update(stateIndustry{c.State, c.Industry}, func(sum *decimal.Decimal) {
			if c.Revenue.Valid {
				*sum = sum.Add(c.Revenue.Amount)
			}
		})
	}

	rows := make([]model.StateIndustryRevenue, 0, groups.len())
	groups.each(func(k stateIndustry, sum decimal.Decimal) {
		total, _ := sum.Float64()
		rows = append(rows, model.StateIndustryRevenue{
			State:        k.state,
			Industry:     k.industry,
			TotalRevenue: total,
		})
	})
	slices.SortStableFunc(rows, func(a, b model.StateIndustryRevenue) int {
		if c := cmp.Compare(a.State, b.State); c != 0 {
			return c
		}
		return descending(a.TotalRevenue, b.TotalRevenue)
	})

	return newSummary(NameRevenueByState, stateTitle, model.StateIndustryRevenueHeader, rows), nil
}

func describeRevenueByState(s *model.Summary) (*chart.Spec, error) {
	rows, err := rowsOf[model.StateIndustryRevenue](s)
	if err != nil {
		return nil, err
	}
	spec := &chart.Spec{
		Kind:  chart.KindTreemap,
		Title: stateTitle,
		Scale: "sunset",
		Hover: "%{label}<br>Total Revenue: $%{value:,.2f}",
	}
	var sum, weighted float64
	for _, r := range rows {
		spec.Points = append(spec.Points, chart.Point{
			Parent: r.State,
			Label:  r.Industry,
			Value:  r.TotalRevenue,
		})
		sum += r.TotalRevenue
		weighted += r.TotalRevenue * r.TotalRevenue
	}
	if sum > 0 {
		mid := weighted / sum
		spec.Midpoint = &mid
	}
	return spec, nil
}
