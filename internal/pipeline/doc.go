// Package pipeline runs a set of reports over one dataset.
//
// Each report is wrapped in a ReportStep. A Pipeline executes its steps in
// order, or concurrently through an errgroup when a concurrency limit
// above one is set; reports are pure, so the result is the same either
// way. Outcomes are always returned in step order.
//
// BatchProcessor runs a fresh pipeline over several datasets at once; the
// compare command uses it for the before and after snapshots.
package pipeline
