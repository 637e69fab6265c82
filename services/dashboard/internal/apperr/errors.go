package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInternal marks a broken invariant inside the pipeline (a bug, not bad input).
	ErrInternal = errors.New("internal pipeline error")
	// ErrNoData is matched by the error reported for a snapshot without data.
	ErrNoData = errors.New("no data available")
)

// FetchError reports a failed read of a remote or local source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaError reports a required column missing from a dataset.
type SchemaError struct {
	Dataset string
	Column  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: required column %q not found", e.Dataset, e.Column)
}

// ParseError reports a cell that could not be coerced. It is recovered per cell.
type ParseError struct {
	Column string
	Value  string
	Kind   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("column %q: cannot parse %q as %s", e.Column, e.Value, e.Kind)
}

// IsNoData reports whether err collapses a run to the "no data" state.
func IsNoData(err error) bool {
	var fe *FetchError
	var se *SchemaError
	return errors.As(err, &fe) || errors.As(err, &se) || errors.Is(err, ErrNoData)
}
