// Package analysis implements the reports: each aggregates a company or
// people table into a summary and describes a chart for it.
//
// Reports are pure. They never mutate the dataset they read and share no
// state, so Run may be called for several reports concurrently. How a
// report treats its own failures is set by its Policy; see Run.
package analysis
