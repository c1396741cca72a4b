// Package main provides the entry point for the corpreport CLI.
//
// corpreport turns a company table and a people table into summary tables
// and charts: company locations, industry distribution, revenue by state
// and by company, the cities with most companies, and job title counts.
//
// Usage:
//
//	corpreport run --companies companies.csv --people people.csv
//	corpreport compare Revenue_by_Company --before q1.csv --after q2.csv
//
// See --help for all available options.
package main

// main is the entry point for corpreport.
func main() {
	Execute()
}
