// Package report writes pipeline results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: terminal tables for human readers
//   - JSONWriter: structured JSON with run metadata and chart descriptions
//   - MarkdownWriter: Markdown with Mermaid charts and links to PNG files
//   - HTMLWriter: a standalone page with embedded PNG charts
//   - XLSXWriter: a workbook with one sheet and native chart per report
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. Compare and the
// WriteComparison functions report the row differences of one report
// between two snapshots.
package report
