// Package apperr defines the error kinds surfaced at the HTTP and client boundaries.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for status mapping and caller handling.
type Kind string

const (
	KindUnknown       Kind = ""
	KindValidation    Kind = "validation"
	KindExtraction    Kind = "extraction"
	KindConfiguration Kind = "configuration"
	KindUpstream      Kind = "upstream"
	KindStorage       Kind = "storage"
)

// Error is a classified failure with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Details returns the wrapped cause text, or "" when there is none.
func (e *Error) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func newErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func Validation(msg string) *Error { return newErr(KindValidation, msg, nil) }

func Extraction(msg string, cause error) *Error { return newErr(KindExtraction, msg, cause) }

func Configuration(msg string) *Error { return newErr(KindConfiguration, msg, nil) }

func Upstream(msg string, cause error) *Error { return newErr(KindUpstream, msg, cause) }

func Storage(msg string, cause error) *Error { return newErr(KindStorage, msg, cause) }

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
