package main

import "fmt"

// Exit statuses.
const (
	exitFatal       = 1 // descriptor could not be assembled
	exitBuildFailed = 2 // descriptor assembled but the extension did not compile
)

// ExitError carries a non-zero exit status out of RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
