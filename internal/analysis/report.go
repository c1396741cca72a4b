package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
)

// Report names.
const (
	NameCompanyLocations     = "Company_Locations"
	NameIndustryDistribution = "Industry_Distribution"
	NameRevenueByState       = "Revenue_Industries_by_State"
	NameRevenueByCompany     = "Revenue_by_Company"
	NameTopCities            = "Top_10_Companies_by_City"
	NameJobTitles            = "Unique_Job_Titles"
)

// DefaultTopN is the length of ranked reports.
const DefaultTopN = 10

// ErrUnknownReport is returned for a report name that does not exist.
var ErrUnknownReport = errors.New("unknown report")

// Policy says how a report treats its own failures.
type Policy struct {
	// SoftAggregate turns aggregation failures into "no result"
	// (model.ErrNoResult) instead of a hard error.
	SoftAggregate bool

	// SwallowRender logs render failures instead of returning them.
	SwallowRender bool
}

// Params are the run-wide knobs reports read.
type Params struct {
	// TopN bounds ranked reports. Zero means DefaultTopN.
	TopN int
}

func (p Params) topN() int {
	if p.TopN <= 0 {
		return DefaultTopN
	}
	return p.TopN
}

// Report pairs an aggregation with its chart description.
type Report struct {
	// Name is the stable identifier used on the command line and in output.
	Name string

	// Title is the human-readable title (also the chart title).
	Title string

	// Input is the table the report reads.
	Input model.Input

	// Columns are the canonical columns the report requires.
	Columns []string

	// Policy is the report's error policy.
	Policy Policy

	// Aggregate computes the summary table. It never mutates ds.
	Aggregate func(ds *model.Dataset, p Params) (*model.Summary, error)

	// Describe builds the chart for a summary. Nil when the report has no chart.
	Describe func(s *model.Summary) (*chart.Spec, error)
}

// All returns every report in presentation order.
func All() []Report {
	return []Report{
		CompanyLocations(),
		IndustryDistribution(),
		RevenueIndustriesByState(),
		RevenueByCompany(),
		TopCompaniesByCity(),
		UniqueJobTitles(),
	}
}

// Names returns the names of every report in presentation order.
func Names() []string {
	reports := All()
	names := make([]string, len(reports))
	for i, r := range reports {
		names[i] = r.Name
	}
	return names
}

// Lookup finds a report by name, ignoring case.
func Lookup(name string) (Report, bool) {
	for _, r := range All() {
		if strings.EqualFold(r.Name, strings.TrimSpace(name)) {
			return r, true
		}
	}
	return Report{}, false
}

// Select returns the named reports in presentation order, without
// duplicates. No names selects every report.
func Select(names []string) ([]Report, error) {
	if len(names) == 0 {
		return All(), nil
	}
	want := make(map[string]bool, len(names))
	for _, name := range names {
		r, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownReport, name, strings.Join(Names(), ", "))
		}
		want[r.Name] = true
	}
	var selected []Report
	for _, r := range All() {
		if want[r.Name] {
			selected = append(selected, r)
		}
	}
	return selected, nil
}
