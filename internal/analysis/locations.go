package analysis

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/nao1215/corpreport/internal/model"
)

// CompanyLocations lists every company with its location and a per-row
// revenue share. The share divides each row's revenue by the number of
// rows that have a revenue at all; it is not grouped by company.
func CompanyLocations() Report {
	return Report{
		Name:      NameCompanyLocations,
		Title:     "Company Locations",
		Input:     model.InputCompanies,
		Columns:   locationColumns,
		Aggregate: aggregateCompanyLocations,
	}
}

var locationColumns = []string{
	model.ColumnCompanyName,
	model.ColumnCity,
	model.ColumnState,
	model.ColumnPostalCode,
	model.ColumnRevenue,
}

func aggregateCompanyLocations(ds *model.Dataset, _ Params) (*model.Summary, error) {
	table := companies(ds)
	if err := table.RequireColumns(NameCompanyLocations, locationColumns...); err != nil {
		return nil, err
	}

	revenues := make([]model.Revenue, len(table.Rows))
	for i, c := range table.Rows {
		revenues[i] = c.Revenue
	}
	_, valid := model.SumRevenue(revenues)

	rows := make([]model.CompanyLocation, 0, len(table.Rows))
	for _, c := range table.Rows {
		loc := model.CompanyLocation{
			CompanyName: c.Name,
			City:        c.City,
			State:       c.State,
			PostalCode:  c.PostalCode,
		}
		if c.Revenue.Valid && valid > 0 {
			share, _ := c.Revenue.Amount.Div(decimal.NewFromInt(int64(valid))).Float64()
			loc.RevenueByCompany = &share
		}
		rows = append(rows, loc)
	}

	slices.SortStableFunc(rows, func(a, b model.CompanyLocation) int {
		if c := compareBlankLast(a.State, b.State); c != 0 {
			return c
		}
		if c := compareBlankLast(a.City, b.City); c != 0 {
			return c
		}
		return compareBlankLast(a.PostalCode, b.PostalCode)
	})

	return newSummary(NameCompanyLocations, "Company Locations", model.CompanyLocationHeader, rows), nil
}
