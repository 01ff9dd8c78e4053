package errors

import (
	stderrors "errors"
)

type Kind string

const (
	KindRootNotFound     Kind = "ROOT_NOT_FOUND"
	KindBaselineNotFound Kind = "BASELINE_NOT_FOUND"
	KindBaselineCorrupt  Kind = "BASELINE_CORRUPT"
	KindWriteFailure     Kind = "WRITE_FAILURE"
)

// Error is a typed failure surfaced to the CLI layer. The Kind lets
// callers branch on the failure class without string matching.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same Kind, so callers can use
// stdlib errors.Is against a bare &Error{Kind: ...} probe.
func (e *Error) Is(target error) bool {
	var t *Error
	if !stderrors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func RootNotFound(message string, err error) *Error {
	return &Error{Kind: KindRootNotFound, Message: message, Err: err}
}

func BaselineNotFound(message string, err error) *Error {
	return &Error{Kind: KindBaselineNotFound, Message: message, Err: err}
}

func BaselineCorrupt(message string, err error) *Error {
	return &Error{Kind: KindBaselineCorrupt, Message: message, Err: err}
}

func WriteFailure(message string, err error) *Error {
	return &Error{Kind: KindWriteFailure, Message: message, Err: err}
}

// KindOf extracts the Kind from err, or "" when err carries no typed Error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
