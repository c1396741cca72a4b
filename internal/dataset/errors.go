package dataset

import "errors"

var (
	// ErrUnsupportedFormat is returned for file extensions no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrNoHeader is returned when a source has no header row.
	ErrNoHeader = errors.New("input has no header row")

	// ErrSheetNotFound is returned when the requested XLSX sheet is missing.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrNoInput is returned when neither a company nor a people source is given.
	ErrNoInput = errors.New("no input files given")
)
