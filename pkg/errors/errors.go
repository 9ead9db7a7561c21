package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error. Handlers map kinds to HTTP statuses;
// everything below the transport layer switches on Kind, never on status.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindAlreadyExists
	KindAlreadyShared
	KindInvalidInput
	KindStorageFailure
)

// Error is the single error type crossing service boundaries. Infrastructure
// causes are wrapped in Err; Message is what the caller may see.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func AlreadyExists(message string) *Error {
	return &Error{Kind: KindAlreadyExists, Message: message}
}

func AlreadyShared(message string) *Error {
	return &Error{Kind: KindAlreadyShared, Message: message}
}

func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

func StorageFailure(message string, err error) *Error {
	return &Error{Kind: KindStorageFailure, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Status returns the HTTP status the kind maps to at the transport boundary.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindAlreadyExists, KindAlreadyShared:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable response code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindAlreadyExists:
		return "ALREADY_EXISTS"
	case KindAlreadyShared:
		return "ALREADY_SHARED"
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindStorageFailure:
		return "STORAGE_FAILURE"
	default:
		return "INTERNAL_ERROR"
	}
}

// Public returns the message safe to send to a caller. Internal and storage
// failures must not leak their underlying error text.
func Public(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindInternal, KindStorageFailure:
			return "internal server error"
		default:
			return appErr.Message
		}
	}
	return "internal server error"
}
