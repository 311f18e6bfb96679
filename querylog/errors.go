package querylog

import (
	"errors"
	"fmt"
)

// ErrEmptyExpression is returned when compiling a blank filter
var ErrEmptyExpression = errors.New("empty filter expression")

// Error types for query log operations
type (
	// CompilationError indicates a filter expression could not be compiled
	CompilationError struct {
		Expression string
		Reason     string
		Err        error
	}

	// EvaluationError indicates a filter could not be evaluated against a record
	EvaluationError struct {
		Expression string
		Line       int
		Err        error
	}

	// ParseError indicates a malformed line in the query log
	ParseError struct {
		Line int
		Err  error
	}
)

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error for filter '%s' on record %d: %v", e.Expression, e.Line, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("query log line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
