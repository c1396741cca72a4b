package model

// Input identifies which table a report reads.
type Input int

const (
	// InputCompanies is the company table.
	InputCompanies Input = iota
	// InputPeople is the people table.
	InputPeople
)

// String returns the flag-style name of the input.
func (i Input) String() string {
	switch i {
	case InputCompanies:
		return "companies"
	case InputPeople:
		return "people"
	default:
		return "unknown"
	}
}

// Dataset bundles the tables loaded for one run.
// Either table may be absent; reports that need an absent table fail with
// ErrEmptyInput or a MissingColumnError.
type Dataset struct {
	Companies CompanyTable
	People    PeopleTable

	// Sources describes where the tables came from.
	Sources []SourceInfo
}

// Has reports whether the dataset carries the given input table.
func (d *Dataset) Has(in Input) bool {
	if d == nil {
		return false
	}
	switch in {
	case InputCompanies:
		return len(d.Companies.Columns) > 0
	case InputPeople:
		return len(d.People.Columns) > 0
	default:
		return false
	}
}
