package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for retry and presentation decisions. Retryability
// is decided by tag, never by inspecting error message text.
type Kind int

const (
	// KindUnknown is the zero value for errors produced outside this package
	KindUnknown Kind = iota
	// KindNotFound covers absent games, players, and question sets
	KindNotFound
	// KindTerminal covers terminal-state conflicts such as joining a
	// finished game, and unauthorized access
	KindTerminal
	// KindTransient covers network and connect failures worth retrying
	KindTransient
	// KindValidation covers malformed input caught at the boundary
	KindValidation
	// KindConfig covers missing backend configuration
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindTerminal:
		return "terminal"
	case KindTransient:
		return "transient"
	case KindValidation:
		return "validation"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is a tagged application error
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// New creates a tagged error with the given kind
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Newf creates a tagged error with a formatted message
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap tags an existing error with a kind and context message
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

// KindOf extracts the kind from an error chain. Untagged errors report
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// Retryable reports whether an operation that failed with err should be
// retried. Only transient failures qualify; not-found, terminal-state, and
// validation errors must fail fast.
func Retryable(err error) bool {
	return KindOf(err) == KindTransient
}

// Convenience constructors mirroring the error taxonomy

func NotFound(format string, args ...any) *Error {
	return Newf(KindNotFound, format, args...)
}

func Terminal(format string, args ...any) *Error {
	return Newf(KindTerminal, format, args...)
}

func Transient(msg string, err error) *Error {
	return Wrap(KindTransient, msg, err)
}

func Validation(format string, args ...any) *Error {
	return Newf(KindValidation, format, args...)
}
