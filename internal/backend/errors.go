package backend

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInputNotFound   = errors.New("backend: input not found")
	ErrAmbiguousInput  = errors.New("backend: ambiguous input name")
	ErrOutputNotFound  = errors.New("backend: output not found")
	ErrAmbiguousOutput = errors.New("backend: graph has more than one output")
	ErrUnboundHandle   = errors.New("backend: handle does not belong to graph")
	ErrInvalidRate     = errors.New("backend: learning rate must be positive and finite")
)

// BindingError reports a failure to resolve a named graph tensor.
type BindingError struct {
	Name  string // Requested name
	Count int    // Number of matches found
	Err   error  // ErrInputNotFound or ErrAmbiguousInput
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	if e.Count > 1 {
		return fmt.Sprintf("%v: %q matches %d inputs", e.Err, e.Name, e.Count)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Name)
}

// Unwrap returns the sentinel error.
func (e *BindingError) Unwrap() error {
	return e.Err
}
