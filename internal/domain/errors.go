package domain

import (
	"errors"
	"fmt"
)

// ErrBackendUnavailable matches every data backend failure.
var ErrBackendUnavailable = errors.New("data backend unavailable")

// UserInputError means the text did not fit the pending expectation.
type UserInputError struct {
	Expectation Expectation
	Input       string
}

func (e *UserInputError) Error() string {
	return fmt.Sprintf("input %q does not match expected %s format", e.Input, e.Expectation)
}

// BackendError wraps a failed data gateway call.
type BackendError struct {
	Sheet string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("read sheet %q: %v", e.Sheet, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackendUnavailable
}
