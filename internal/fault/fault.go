// Package fault classifies pipeline failures. Every error that escapes a
// stage is wrapped with a Kind so the orchestrator and callers can report the
// failing stage and error class without string matching.
package fault

import (
	"errors"
	"fmt"
)

// Kind is the error class of a pipeline failure.
type Kind string

const (
	// Extraction covers unreadable or malformed sources.
	Extraction Kind = "extraction"
	// Transformation covers row-level processing failures.
	Transformation Kind = "transformation"
	// Connection covers unreachable databases and authentication failures.
	Connection Kind = "connection"
	// Load covers schema conflicts and write failures.
	Load Kind = "load"
)

// Error wraps an underlying cause with its classification and, when known,
// the number of rows affected at the time of failure.
type Error struct {
	Kind Kind
	Rows int64
	Err  error
}

func (e *Error) Error() string {
	if e.Rows > 0 {
		return fmt.Sprintf("%s error after %d rows: %v", e.Kind, e.Rows, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap classifies err with kind. Returns nil when err is nil. An error that
// already carries a Kind is returned unchanged so the innermost
// classification wins.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// Wrapf classifies a new formatted error with kind.
func Wrapf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// WithRows attaches an affected-row count to a classified error. Unclassified
// errors pass through unchanged.
func WithRows(err error, rows int64) error {
	var fe *Error
	if errors.As(err, &fe) {
		fe.Rows = rows
	}
	return err
}

// KindOf reports the classification of err, or false when err carries none.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
