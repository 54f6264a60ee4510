package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSources indicates that no source files were configured.
	ErrNoSources = errors.New("no source files configured")
	// ErrNoYearColumn indicates a source without a year column.
	ErrNoYearColumn = errors.New("year column not found")
	// ErrInvalidYear indicates a year cell that is not an integer.
	ErrInvalidYear = errors.New("invalid year")
	// ErrDuplicateYear indicates the same year twice within one source.
	ErrDuplicateYear = errors.New("duplicate year")
	// ErrMissingColumn indicates a required column absent or never observed.
	ErrMissingColumn = errors.New("required column missing")
	// ErrNoRows indicates that no source row falls inside the year range.
	ErrNoRows = errors.New("no rows in year range")
)

// LoadError reports an unrecoverable data load failure. Path is empty when the
// failure concerns the merged table rather than one source file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load dataset"
	}
	if e.Path != "" {
		return fmt.Sprintf("load dataset: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("load dataset: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
