// Package errors provides custom error types for catalog and cart operations.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrFetchFailure   = errors.New("product source unavailable")
	ErrStorageCorrupt = errors.New("stored cart is corrupt")
	ErrInvalidQuery   = errors.New("invalid catalog query")
)

// FetchError reports a failed call to a product source.
type FetchError struct {
	Op  string
	Err error
}

// NewFetchError wraps err with the name of the failed operation.
func NewFetchError(op string, err error) *FetchError {
	return &FetchError{Op: op, Err: err}
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailure }
