// Package database reads tables out of SQLite files for corpreport.
//
// Company and people datasets are sometimes shipped as a SQLite database
// instead of CSV or XLSX. SourceDB opens such a file (read only unless the
// caller asks otherwise), lists its tables and returns a table as a header
// plus nullable string cells. Typing and column mapping happen later, in
// the dataset package.
//
// The driver is modernc.org/sqlite, which is pure Go, so the binary stays
// CGO-free.
package database
