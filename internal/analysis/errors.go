package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSelection indicates a menu option outside the enumeration.
	ErrUnknownSelection = errors.New("unknown selection")
	// ErrNoDataset indicates an analyzer call without a loaded dataset.
	ErrNoDataset = errors.New("dataset not loaded")
	// ErrInsufficientData indicates too few observations for an estimator.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrSingular indicates a rank-deficient or numerically singular design.
	ErrSingular = errors.New("singular design matrix")
)

// Error reports an analyzer that could not produce a result.
type Error struct {
	Selection Selection
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("analysis %s failed: %v", e.Selection.Slug(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
