package analysis

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
)

// UniqueJobTitles counts normalized job titles and keeps the top N.
// Titles are compared trimmed and lower-cased, and returned title-cased.
func UniqueJobTitles() Report {
	return Report{
		Name:      NameJobTitles,
		Title:     jobTitlesTitle(DefaultTopN),
		Input:     model.InputPeople,
		Columns:   []string{model.ColumnJobTitle},
		Policy:    Policy{SoftAggregate: true, SwallowRender: true},
		Aggregate: aggregateJobTitles,
		Describe:  describeJobTitles,
	}
}

func jobTitlesTitle(n int) string {
	return fmt.Sprintf("Top %d Job Titles", n)
}

func aggregateJobTitles(ds *model.Dataset, p Params) (*model.Summary, error) {
	table := people(ds)
	if err := table.RequireColumns(NameJobTitles, model.ColumnJobTitle); err != nil {
		return nil, err
	}

	groups := newOrderedGroups[string, int]()
	for _, person := range table.Rows {
		if !person.HasJobTitle {
			continue
		}
		title := strings.ToLower(strings.TrimSpace(person.JobTitle))
		if title == "" {
			continue
		}
		groups.update(title, func(n *int) { *n++ })
	}

	rows := make([]model.JobTitleCount, 0, groups.len())
	groups.each(func(title string, n int) {
		rows = append(rows, model.JobTitleCount{JobTitle: title, Count: n})
	})
	slices.SortStableFunc(rows, func(a, b model.JobTitleCount) int {
		return descending(a.Count, b.Count)
	})
	rows = topN(rows, p.topN())

	// cases.Caser is stateful, so each call gets its own.
	caser := cases.Title(language.English)
	for i := range rows {
		rows[i].JobTitle = caser.String(rows[i].JobTitle)
	}

	return newSummary(NameJobTitles, jobTitlesTitle(p.topN()), model.JobTitleCountHeader, rows), nil
}

func describeJobTitles(s *model.Summary) (*chart.Spec, error) {
	rows, err := rowsOf[model.JobTitleCount](s)
	if err != nil {
		return nil, err
	}
	spec := &chart.Spec{
		Kind:        chart.KindBar,
		Title:       s.Title,
		XTitle:      "Job Title",
		YTitle:      "Frequency",
		Scale:       "aggrnyl",
		ValueLabels: true,
		Hover:       "%{x}: %{y}",
	}
	for _, r := range rows {
		spec.Points = append(spec.Points, chart.Point{
			Label: r.JobTitle,
			Value: float64(r.Count),
			Text:  chart.FormatSI(float64(r.Count), 2),
		})
	}
	return spec, nil
}
