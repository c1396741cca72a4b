package analysis

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
)

const companyTitle = "Total Revenue by Company"

// RevenueByCompany sums revenue per company name. Its failures are soft:
// the run logs them and carries on without the table.
func RevenueByCompany() Report {
	return Report{
		Name:      NameRevenueByCompany,
		Title:     companyTitle,
		Input:     model.InputCompanies,
		Columns:   []string{model.ColumnCompanyName, model.ColumnRevenue},
		Policy:    Policy{SoftAggregate: true, SwallowRender: true},
		Aggregate: aggregateRevenueByCompany,
		Describe:  describeRevenueByCompany,
	}
}

func aggregateRevenueByCompany(ds *model.Dataset, _ Params) (*model.Summary, error) {
	table := companies(ds)
	if err := table.RequireColumns(NameRevenueByCompany, model.ColumnCompanyName, model.ColumnRevenue); err != nil {
		return nil, err
	}

	groups := newOrderedGroups[string, decimal.Decimal]()
	for _, c := range table.Rows {
		if isBlank(c.Name) {
			continue
		}
		groups.update(c.Name, func(sum *decimal.Decimal) {
			if c.Revenue.Valid {
				*sum = sum.Add(c.Revenue.Amount)
			}
		})
	}

	rows := make([]model.CompanyRevenue, 0, groups.len())
	groups.each(func(name string, sum decimal.Decimal) {
		total, _ := sum.Float64()
		rows = append(rows, model.CompanyRevenue{CompanyName: name, TotalRevenue: total})
	})
	slices.SortStableFunc(rows, func(a, b model.CompanyRevenue) int {
		return descending(a.TotalRevenue, b.TotalRevenue)
	})

	return newSummary(NameRevenueByCompany, companyTitle, model.CompanyRevenueHeader, rows), nil
}

func describeRevenueByCompany(s *model.Summary) (*chart.Spec, error) {
	// The chart reads the two series by their lower-cased names.
	want := []string{
		strings.ToLower(model.ColumnCompanyName),
		strings.ToLower(model.ColumnTotalRevenue),
	}
	have := make([]string, len(s.Header))
	for i, h := range s.Header {
		have[i] = strings.ToLower(h)
	}
	for _, col := range want {
		if !slices.Contains(have, col) {
			return nil, &model.MissingColumnError{Report: NameRevenueByCompany, Column: col}
		}
	}

	rows, err := rowsOf[model.CompanyRevenue](s)
	if err != nil {
		return nil, err
	}
	spec := &chart.Spec{
		Kind:   chart.KindHBar,
		Title:  companyTitle,
		XTitle: "Total Revenue",
		YTitle: "Company Name",
		Scale:  "sunsetdark",
		Hover:  "%{y}: $%{x:,.2f}",
	}
	for _, r := range rows {
		spec.Points = append(spec.Points, chart.Point{Label: r.CompanyName, Value: r.TotalRevenue})
	}
	return spec, nil
}
