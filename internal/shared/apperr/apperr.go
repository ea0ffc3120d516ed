// Package apperr classifies errors surfaced by the planner so transports can
// map them to status codes and callers can decide whether to retry.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an error.
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindInternal            Kind = "internal"
)

// Error is the structured error returned across package boundaries.
type Error struct {
	Kind      Kind
	Message   string
	Cause     error
	Retryable bool
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// InvalidInput reports a caller mistake. Never retryable.
func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// Upstream wraps a collaborator failure as retryable.
func Upstream(cause error, message string) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: message, Cause: cause, Retryable: true}
}

func Internal(cause error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsRetryable(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// Message returns the human-readable part of err without the kind prefix.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
