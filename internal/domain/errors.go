package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is a machine-readable failure category.
type ErrorKind string

const (
	// KindValidation covers input rejected before any network call.
	KindValidation ErrorKind = "validation"
	// KindTransport covers unreachable proxies, non-2xx statuses, malformed envelopes and timeouts.
	KindTransport ErrorKind = "transport"
	// KindApplication covers well-formed responses that report failure.
	KindApplication ErrorKind = "application"
	// KindEmptyExport is raised when an export has no rows to serialize.
	KindEmptyExport ErrorKind = "empty_export"
	// KindStorage covers persistent storage failures. It never leaves the history boundary.
	KindStorage ErrorKind = "storage"
)

var (
	ErrEmptyQuery   = errors.New("query cannot be empty")
	ErrUnknownForm  = errors.New("query does not start with a recognized keyword")
	ErrBlockedQuery = errors.New("query blocked by guard rule")
	ErrEmptyExport  = errors.New("no results to export")
	ErrNoCredential = errors.New("no password stored for endpoint")
)

// Error wraps a failure with its kind and a user-facing message.
type Error struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Cause     error     `json:"-"`
	ElapsedMs int64     `json:"elapsed_ms"`
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(kind ErrorKind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

// FromSentinel builds an error whose message is the sentinel's text.
func FromSentinel(kind ErrorKind, sentinel error) *Error {
	return &Error{Kind: kind, Message: sentinel.Error(), Cause: sentinel}
}

func WrapError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: err}
}

// KindOf returns the kind carried by err, or "" when err is not a *Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
