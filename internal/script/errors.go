package script

import "errors"

// Errors for script state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("script state is closed")

	// ErrExecutionTimeout is returned when a call runs past its deadline.
	ErrExecutionTimeout = errors.New("script execution timeout")

	// ErrNotFunction is returned when Call names a global that is not a function.
	ErrNotFunction = errors.New("not a function")
)
