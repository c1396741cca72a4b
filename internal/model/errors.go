package model

import (
	"errors"
	"fmt"
)

// Report validation errors.
// Callers use errors.Is to tell a data contract violation from an I/O
// failure; MissingColumnError additionally names the offending column.
var (
	// ErrEmptyInput is returned when a report that needs rows receives none.
	ErrEmptyInput = errors.New("input table is empty")

	// ErrMissingColumn is wrapped by MissingColumnError.
	ErrMissingColumn = errors.New("required column is missing")

	// ErrInvalidValue is returned when a required cell is blank.
	ErrInvalidValue = errors.New("required value is blank")

	// ErrNoResult marks a report that failed softly: the failure was logged
	// and the report produced no table, but the run as a whole continues.
	ErrNoResult = errors.New("report produced no result")
)

// MissingColumnError is returned when a table lacks a column a report needs.
type MissingColumnError struct {
	// Report is the name of the report that required the column.
	Report string

	// Column is the canonical column name.
	Column string
}

// Error implements the error interface.
func (e *MissingColumnError) Error() string {
	if e.Report == "" {
		return fmt.Sprintf("missing required column %q", e.Column)
	}
	return fmt.Sprintf("%s: missing required column %q", e.Report, e.Column)
}

// Unwrap lets errors.Is match ErrMissingColumn.
func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}
