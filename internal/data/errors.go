package data

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrWidthMismatch = errors.New("data: width mismatch")
	ErrEmptySegment  = errors.New("data: empty segment")
	ErrEmptySequence = errors.New("data: sequence has no steps")
)

// WidthError describes an example whose width disagrees with the rest of its
// segment.
type WidthError struct {
	Field string // Which part disagreed (e.g. "features", "labels[1]", "step")
	Index int    // Position of the offending example within the segment
	Want  int    // Width established by the first example
	Got   int    // Width found
}

// Error implements the error interface.
func (e *WidthError) Error() string {
	return fmt.Sprintf("data: width mismatch in %s of example %d: want %d, got %d", e.Field, e.Index, e.Want, e.Got)
}

// Unwrap allows errors.Is(err, ErrWidthMismatch).
func (e *WidthError) Unwrap() error {
	return ErrWidthMismatch
}

// checkWidth returns a *WidthError when got differs from want.
func checkWidth(field string, index, want, got int) error {
	if want == got {
		return nil
	}
	return &WidthError{Field: field, Index: index, Want: want, Got: got}
}
