// Package errorx carries the error-kind taxonomy from §7 of the sync spec:
// Unauthorized, NotFound, ValidationError, Conflict, ProviderMissingKey,
// ProviderStreamFailure, Transient and Fatal. Kinds map to HTTP status at
// the handler boundary; nothing upstream of that boundary should care about
// status codes.
package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	Unauthorized          Kind = "unauthorized"
	NotFound              Kind = "not_found"
	ValidationError       Kind = "validation_error"
	Conflict              Kind = "conflict"
	ProviderMissingKey    Kind = "provider_missing_key"
	ProviderStreamFailure Kind = "provider_stream_failure"
	Transient             Kind = "transient"
	Fatal                 Kind = "fatal"
	Internal              Kind = "internal"
)

// Error is a kinded error with an opaque message safe to log, and an
// optional wrapped cause kept out of client-facing responses.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind of err, defaulting to Internal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// HTTPStatus maps a Kind to the status code used at the handler boundary.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case ValidationError:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case ProviderMissingKey, ProviderStreamFailure, Transient, Internal, Fatal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns client-safe text for an error: the kind's own
// message for well-known kinds, an opaque string otherwise so internal
// detail never leaks into a response body.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case Unauthorized, NotFound, ValidationError, Conflict, ProviderMissingKey:
			return e.Message
		}
	}
	return "an internal error occurred"
}
