// Package dataset loads the company and people tables that corpreport
// reports read.
//
// Three source formats are supported, chosen by file extension:
//   - CSV (.csv), decoded with gota dataframes as string columns
//   - XLSX (.xlsx), the first sheet or a named one, read with excelize
//   - SQLite (.db, .sqlite, .sqlite3), a whole table read through the
//     database package
//
// Loaders do not clean data. They map source headers to canonical column
// names, turn null markers into missing values and parse revenue text.
// Everything else is left to the reports.
//
// Every loaded source is fingerprinted with SHA3-256 so that outputs can
// say exactly which bytes they were computed from.
package dataset
