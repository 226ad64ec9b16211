package helpers

import (
	"errors"
	"fmt"

	"github.com/doeshing/kgq/internal/domain"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // query or export failed
	ExitCommandError = 2 // bad usage or configuration
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
	// Reported is set when the failure was already displayed.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// Reported marks a failure that the renderer already printed.
func Reported(err error) *ExitError {
	return &ExitError{Code: ExitFailure, Err: err, Reported: true}
}

// GetExitCode maps err onto a process exit code. Validation failures of the
// query itself count as query failures; anything unclassified is a command error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindTransport, domain.KindApplication, domain.KindEmptyExport:
		return ExitFailure
	}
	return ExitCommandError
}

// IsReported reports whether err was already displayed to the user.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}
