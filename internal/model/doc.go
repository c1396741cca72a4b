// Package model defines the data structures shared by corpreport packages.
//
// This package contains the following main types:
//   - Company and CompanyTable: rows of the already cleaned company dataset
//   - Person and PeopleTable: rows of the people dataset (job titles)
//   - Revenue: a normalized, possibly missing revenue amount
//   - Summary and Row: the derived, read-only result of one report
//   - Dataset: the tables handed to reports together with their provenance
//
// Models live in their own package because the dataset loaders, the analysis
// functions and the output writers all need them, and keeping them here
// avoids import cycles between those packages.
//
// Tables are treated as values. Nothing in this module mutates a table after
// it has been loaded; reports copy what they need to transform.
package model
