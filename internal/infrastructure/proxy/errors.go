package proxy

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"syscall"
)

// Network failure categories.
const (
	CategoryTimeout   = "timeout"
	CategoryDNS       = "dns"
	CategoryRefused   = "refused"
	CategoryTLS       = "tls"
	CategoryMalformed = "malformed"
	CategoryNetwork   = "network"
)

// Error is a transport failure with its classified cause. It satisfies
// ports.ClassifiedError.
type Error struct {
	category string
	Err      error
}

func (e *Error) Error() string    { return e.Err.Error() }
func (e *Error) Unwrap() error    { return e.Err }
func (e *Error) Category() string { return e.category }

func classified(err error) error {
	if err == nil {
		return nil
	}
	return &Error{category: Classify(err), Err: err}
}

func malformed(err error) error {
	return &Error{category: CategoryMalformed, Err: err}
}

// Classify names the network cause of err.
func Classify(err error) string {
	switch {
	case isTimeout(err):
		return CategoryTimeout
	case isDNS(err):
		return CategoryDNS
	case isRefused(err):
		return CategoryRefused
	case isTLS(err):
		return CategoryTLS
	default:
		return CategoryNetwork
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}

func isDNS(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLS(err error) bool {
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}
	var unknownAuth x509.UnknownAuthorityError
	if errors.As(err, &unknownAuth) {
		return true
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "tls") || strings.Contains(msg, "x509") || strings.Contains(msg, "certificate")
}
