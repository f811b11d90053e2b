package command

import (
	"errors"
	"fmt"
)

// InvalidArgsError reports constructor arguments that cannot produce a
// well-formed command. The engine never transmits anything that failed
// construction.
type InvalidArgsError struct {
	Message string
}

func (e *InvalidArgsError) Error() string {
	return fmt.Sprintf("invalid args: %s", e.Message)
}

// NewInvalidArgsError creates an InvalidArgsError with a formatted message.
func NewInvalidArgsError(format string, args ...any) *InvalidArgsError {
	return &InvalidArgsError{Message: fmt.Sprintf(format, args...)}
}

// IsInvalidArgs checks if an error is an InvalidArgsError.
func IsInvalidArgs(err error) bool {
	var e *InvalidArgsError
	return errors.As(err, &e)
}
