// pxerr defines the closed set of error kinds surfaced by the parser,
// planner, cursor, and the catalog adapters they consume. Each error carries
// a SQL-state code so a host application can distinguish a bad query from a
// storage failure without string matching.
package pxerr

import (
	"errors"
	"fmt"
)

// Kind is a closed enum of error categories.
type Kind int

const (
	// InvalidSQL covers parse errors and failed identifier/alias binding.
	InvalidSQL Kind = iota + 1
	// UnsupportedOperation covers non-SELECT statements and syntax this
	// engine does not implement.
	UnsupportedOperation
	// InvalidState covers cursor operations attempted before-first,
	// after-last, or on a closed result set.
	InvalidState
	// DataFormat covers decode failures reported by the catalog adapter.
	DataFormat
	// ConnectionFailure covers failures reaching the catalog.
	ConnectionFailure
	// NotFound covers missing tables or catalog entries. Unknown columns
	// are InvalidSQL binding errors.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case InvalidSQL:
		return "InvalidSQL"
	case UnsupportedOperation:
		return "UnsupportedOperation"
	case InvalidState:
		return "InvalidState"
	case DataFormat:
		return "DataFormat"
	case ConnectionFailure:
		return "ConnectionFailure"
	case NotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// sqlState maps a Kind to a short alphanumeric SQL-state style code.
func (k Kind) sqlState() string {
	switch k {
	case InvalidSQL:
		return "42000"
	case UnsupportedOperation:
		return "0A000"
	case InvalidState:
		return "24000"
	case DataFormat:
		return "22000"
	case ConnectionFailure:
		return "08000"
	case NotFound:
		return "42S02"
	default:
		return "HY000"
	}
}

// Error is the error type returned by this module's packages. It is never
// constructed directly by callers outside the module; use the New/Wrap
// helpers below.
type Error struct {
	Kind     Kind
	SQLState string
	Message  string
	cause    error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s [%s]: %s: %s", e.Kind, e.SQLState, e.Message, e.cause)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Kind, e.SQLState, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		SQLState: kind.sqlState(),
		Message:  fmt.Sprintf(format, args...),
	}
}

// Wrap builds an *Error of the given kind that chains an underlying cause,
// for adapter errors the core only needs to add context to.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		SQLState: kind.sqlState(),
		Message:  fmt.Sprintf(format, args...),
		cause:    cause,
	}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
