package model

// Output column names shared by several summaries.
const (
	ColumnRevenueByCompany = "Revenue_by_Company"
	ColumnPercentage       = "Percentage"
	ColumnTotalRevenue     = "Total_Revenue"
	ColumnCompanyCount     = "Company_Count"
	ColumnCount            = "Count"
)

// CompanyLocation is one row of the Company_Locations summary.
type CompanyLocation struct {
	CompanyName string `json:"Company_Name"`
	City        string `json:"City"`
	State       string `json:"State"`
	PostalCode  string `json:"Postal_Code"`

	// RevenueByCompany is nil when the source revenue was missing.
	RevenueByCompany *float64 `json:"Revenue_by_Company"`
}

// CompanyLocationHeader is the column order of CompanyLocation.
var CompanyLocationHeader = []string{
	ColumnCompanyName, ColumnCity, ColumnState, ColumnPostalCode, ColumnRevenueByCompany,
}

// Key implements Row.
func (r CompanyLocation) Key() string {
	return joinKey(r.CompanyName, r.City, r.State, r.PostalCode)
}

// Values implements Row.
func (r CompanyLocation) Values() []any {
	var share any
	if r.RevenueByCompany != nil {
		share = *r.RevenueByCompany
	}
	return []any{r.CompanyName, r.City, r.State, r.PostalCode, share}
}

// IndustryShare is one row of the Industry_Distribution summary.
type IndustryShare struct {
	Industry     string  `json:"Industry"`
	Percentage   float64 `json:"Percentage"`
	TotalRevenue float64 `json:"Total_Revenue"`
}

// IndustryShareHeader is the column order of IndustryShare.
var IndustryShareHeader = []string{ColumnIndustry, ColumnPercentage, ColumnTotalRevenue}

// Key implements Row.
func (r IndustryShare) Key() string { return r.Industry }

// Values implements Row.
func (r IndustryShare) Values() []any {
	return []any{r.Industry, r.Percentage, r.TotalRevenue}
}

// StateIndustryRevenue is one row of the Revenue_Industries_by_State summary.
type StateIndustryRevenue struct {
	State        string  `json:"State"`
	Industry     string  `json:"Industry"`
	TotalRevenue float64 `json:"Total_Revenue"`
}

// StateIndustryRevenueHeader is the column order of StateIndustryRevenue.
var StateIndustryRevenueHeader = []string{ColumnState, ColumnIndustry, ColumnTotalRevenue}

// Key implements Row.
func (r StateIndustryRevenue) Key() string { return joinKey(r.State, r.Industry) }

// Values implements Row.
func (r StateIndustryRevenue) Values() []any {
	return []any{r.State, r.Industry, r.TotalRevenue}
}

// CompanyRevenue is one row of the Revenue_by_Company summary.
type CompanyRevenue struct {
	CompanyName  string  `json:"Company_Name"`
	TotalRevenue float64 `json:"Total_Revenue"`
}

// CompanyRevenueHeader is the column order of CompanyRevenue.
var CompanyRevenueHeader = []string{ColumnCompanyName, ColumnTotalRevenue}

// Key implements Row.
func (r CompanyRevenue) Key() string { return r.CompanyName }

// Values implements Row.
func (r CompanyRevenue) Values() []any {
	return []any{r.CompanyName, r.TotalRevenue}
}

// CityCount is one row of the Top_10_Companies_by_City summary.
type CityCount struct {
	City         string  `json:"City"`
	CompanyCount int     `json:"Company_Count"`
	Percentage   float64 `json:"Percentage"`
}

// CityCountHeader is the column order of CityCount.
var CityCountHeader = []string{ColumnCity, ColumnCompanyCount, ColumnPercentage}

// Key implements Row.
func (r CityCount) Key() string { return r.City }

// Values implements Row.
func (r CityCount) Values() []any {
	return []any{r.City, r.CompanyCount, r.Percentage}
}

// JobTitleCount is one row of the Unique_Job_Titles summary.
type JobTitleCount struct {
	JobTitle string `json:"Job_Title"`
	Count    int    `json:"Count"`
}

// JobTitleCountHeader is the column order of JobTitleCount.
var JobTitleCountHeader = []string{ColumnJobTitle, ColumnCount}

// Key implements Row.
func (r JobTitleCount) Key() string { return r.JobTitle }

// Values implements Row.
func (r JobTitleCount) Values() []any {
	return []any{r.JobTitle, r.Count}
}
