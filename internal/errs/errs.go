// Package errs defines the failure kinds surfaced by db-sync operations.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind string

const (
	KindUnknown    Kind = "unknown"
	KindValidation Kind = "validation"
	KindStorage    Kind = "storage"
	KindExecution  Kind = "execution"
	KindIntegrity  Kind = "integrity"
)

// Error is a single human-readable failure with a machine-readable kind.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an Error of the given kind.
func E(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// Validation reports malformed or missing input.
func Validation(op, format string, args ...any) *Error {
	return E(KindValidation, op, fmt.Sprintf(format, args...), nil)
}

// Storage wraps a filesystem failure.
func Storage(op string, err error) *Error {
	return E(KindStorage, op, "", err)
}

// Execution wraps a statement failure reported by the database engine.
func Execution(op, msg string, err error) *Error {
	return E(KindExecution, op, msg, err)
}

// Integrity reports a dump that lacks what an operation requires.
func Integrity(op, format string, args ...any) *Error {
	return E(KindIntegrity, op, fmt.Sprintf(format, args...), nil)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
