// Package apperr defines the error-kind taxonomy shared across the core and
// the HTTP layer. Every error that crosses a component boundary should be (or
// wrap) an *Error so the HTTP layer can map it to a status code without
// re-deriving the failure class from string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies the failure so callers (chiefly the HTTP layer) can react
// without inspecting the message.
type Kind int

const (
	// KindInternal marks an invariant violation caught at runtime; fatal for
	// the request.
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindStorage
	KindIO
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindValidation:
		return "Validation"
	case KindStorage:
		return "Storage"
	case KindIO:
		return "Io"
	case KindUpstream:
		return "Upstream"
	default:
		return "Internal"
	}
}

// Error is the concrete error type carried across the core.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a bare *Error with no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error that preserves cause for errors.Is/As chains.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NotFound, Conflict, Validation, Storage, IO and Upstream are convenience
// constructors mirroring the kinds above.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func Storage(cause error, format string, args ...any) *Error {
	return Wrap(KindStorage, fmt.Sprintf(format, args...), cause)
}

func IO(cause error, format string, args ...any) *Error {
	return Wrap(KindIO, fmt.Sprintf(format, args...), cause)
}

func Upstream(cause error, format string, args ...any) *Error {
	return Wrap(KindUpstream, fmt.Sprintf(format, args...), cause)
}

func Internal(format string, args ...any) *Error {
	return New(KindInternal, fmt.Sprintf(format, args...))
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error, defaulting
// to KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
