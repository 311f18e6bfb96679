package stats

import "errors"

// Common errors
var (
	// ErrInvalidValue indicates an unknown enum value
	ErrInvalidValue = errors.New("invalid value")
	// ErrMissingArgument indicates a required path argument was empty
	ErrMissingArgument = errors.New("missing required argument")
	// ErrInvalidRange indicates the end of a range precedes its start
	ErrInvalidRange = errors.New("invalid date range: to is before from")
	// ErrNotJSON is returned when decoding a report requested as CSV
	ErrNotJSON = errors.New("report is not JSON")
)
