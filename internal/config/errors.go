package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// File.Validate. Callers match them with errors.Is.
var (
	// ErrNoInput is returned when neither --companies nor --people is given.
	ErrNoInput = errors.New("no input specified: use --companies and/or --people")

	// ErrInvalidTopN is returned when --top is outside 1..MaxTopN.
	ErrInvalidTopN = errors.New("invalid top: must be between 1 and 100")

	// ErrInvalidFormat is returned for an unknown output format.
	ErrInvalidFormat = errors.New("invalid format: must be one of text, json, markdown, html, xlsx")

	// ErrOutputRequired is returned when a binary format would go to stdout.
	ErrOutputRequired = errors.New("xlsx output needs --output")

	// ErrInvalidChartSize is returned when a chart dimension is not positive.
	ErrInvalidChartSize = errors.New("invalid chart size: width and height must be positive")

	// ErrInvalidParallelism is returned when the parallel limit is not positive.
	ErrInvalidParallelism = errors.New("invalid parallelism: must be positive")

	// ErrUnknownColumn is returned when the column map targets a name that
	// is not a canonical column.
	ErrUnknownColumn = errors.New("unknown canonical column")

	// ErrUnknownScale is returned for a colour scale that does not exist.
	ErrUnknownScale = errors.New("unknown colour scale")
)
