// Package apperr defines the error taxonomy shared by the request pipeline
// and maps each kind to an HTTP status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	// KindInternal is any fault not covered by a more specific kind.
	KindInternal Kind = iota
	// KindValidation marks malformed or missing request fields.
	KindValidation
	// KindFetch marks a failed remote input download.
	KindFetch
	// KindProcessing marks a failed ffmpeg invocation.
	KindProcessing
	// KindNotFound marks an unknown or expired download identifier.
	KindNotFound
	// KindIO marks a local filesystem failure.
	KindIO
)

// String returns the string representation of a kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindFetch:
		return "fetch"
	case KindProcessing:
		return "processing"
	case KindNotFound:
		return "not_found"
	case KindIO:
		return "io"
	default:
		return "internal"
	}
}

// Error is a classified error carrying a client-facing detail string.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Detail == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the response status for the error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindFetch:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Validation returns a KindValidation error.
func Validation(detail string) error {
	return &Error{Kind: KindValidation, Detail: detail}
}

// Fetchf returns a KindFetch error with a formatted detail.
func Fetchf(format string, args ...interface{}) error {
	return &Error{Kind: KindFetch, Detail: fmt.Sprintf(format, args...)}
}

// Processing returns a KindProcessing error.
func Processing(detail string, err error) error {
	return &Error{Kind: KindProcessing, Detail: detail, Err: err}
}

// NotFound returns a KindNotFound error.
func NotFound(detail string) error {
	return &Error{Kind: KindNotFound, Detail: detail}
}

// IO wraps a filesystem error.
func IO(detail string, err error) error {
	return &Error{Kind: KindIO, Detail: detail, Err: err}
}

// KindOf reports the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status returns the HTTP status and client detail for err. Unclassified
// errors get a generic message so internals are not leaked.
func Status(err error) (int, string) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, "Unexpected error while processing request"
	}
	switch e.Kind {
	case KindInternal, KindIO:
		return e.HTTPStatus(), "Unexpected error while processing request"
	}
	return e.HTTPStatus(), e.Error()
}
