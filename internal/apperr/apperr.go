// Package apperr defines the closed set of failure kinds this service
// reports and how each maps to an HTTP status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation covers malformed or incomplete client input.
	KindValidation
	// KindStorage covers document-store failures, including unreachable
	// servers and failed reads/writes.
	KindStorage
	// KindIO covers local filesystem failures in the upload directory.
	KindIO
)

// Error tags an underlying error with one of the recognized kinds.
type Error struct {
	kind Kind
	err  error
}

func (e *Error) Error() string { return e.err.Error() }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Kind() Kind    { return e.kind }

// Validationf builds a validation error from a format string.
func Validationf(format string, args ...any) error {
	return &Error{kind: KindValidation, err: fmt.Errorf(format, args...)}
}

// Storage wraps a document-store failure. Returns nil for a nil cause.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return &Error{kind: KindStorage, err: err}
}

// IO wraps a filesystem failure. Returns nil for a nil cause.
func IO(err error) error {
	if err == nil {
		return nil
	}
	return &Error{kind: KindIO, err: err}
}

// KindOf reports the kind of err, or KindUnknown for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// StatusCode maps an error to the HTTP status a handler should write.
// Untagged errors map to 500.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
