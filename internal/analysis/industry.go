package analysis

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
)

const industryTitle = "Industry Distribution: Revenue & Percentage"

// IndustryDistribution reports, per industry, the share of companies and
// the total revenue.
func IndustryDistribution() Report {
	return Report{
		Name:      NameIndustryDistribution,
		Title:     industryTitle,
		Input:     model.InputCompanies,
		Columns:   []string{model.ColumnIndustry, model.ColumnRevenue},
		Policy:    Policy{SwallowRender: true},
		Aggregate: aggregateIndustryDistribution,
		Describe:  describeIndustryDistribution,
	}
}

type industryAcc struct {
	count   int64
	revenue decimal.Decimal
}

func aggregateIndustryDistribution(ds *model.Dataset, _ Params) (*model.Summary, error) {
	table := companies(ds)
	if table.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", NameIndustryDistribution, model.ErrEmptyInput)
	}
	if err := table.RequireColumns(NameIndustryDistribution, model.ColumnIndustry, model.ColumnRevenue); err != nil {
		return nil, err
	}

	groups := newOrderedGroups[string, industryAcc]()
	for i, c := range table.Rows {
		if isBlank(c.Industry) {
			return nil, fmt.Errorf("%s: %w: row %d has no %s",
				NameIndustryDistribution, model.ErrInvalidValue, i+1, model.ColumnIndustry)
		}
		groups.update(c.Industry, func(acc *industryAcc) {
			acc.count++
			if c.Revenue.Valid {
				acc.revenue = acc.revenue.Add(c.Revenue.Amount)
			}
		})
	}

	rows := make([]model.IndustryShare, 0, groups.len())
	counts := make([]int64, 0, groups.len())
	groups.each(func(industry string, acc industryAcc) {
		rows = append(rows, model.IndustryShare{
			Industry:     industry,
			TotalRevenue: model.Round2(acc.revenue),
		})
		counts = append(counts, acc.count)
	})
	for i, pct := range model.Percentages(counts) {
		rows[i].Percentage = pct
	}
	slices.SortStableFunc(rows, func(a, b model.IndustryShare) int {
		return descending(a.Percentage, b.Percentage)
	})

	return newSummary(NameIndustryDistribution, industryTitle, model.IndustryShareHeader, rows), nil
}

func describeIndustryDistribution(s *model.Summary) (*chart.Spec, error) {
	rows, err := rowsOf[model.IndustryShare](s)
	if err != nil {
		return nil, err
	}
	spec := &chart.Spec{
		Kind:      chart.KindBubble,
		Title:     industryTitle,
		XTitle:    "Percentage of Companies in Industry",
		YTitle:    "Total Revenue ($)",
		Scale:     "agsunset",
		LogY:      true,
		MaxBubble: 100,
		Hover:     "Industry: %{text}<br>Percentage: %{x:.2f}%<br>Total Revenue: $%{y:,.2f}",
	}
	for _, r := range rows {
		spec.Points = append(spec.Points, chart.Point{
			Label: r.Industry,
			X:     r.Percentage,
			Y:     r.TotalRevenue,
			Size:  r.TotalRevenue,
		})
	}
	return spec, nil
}
