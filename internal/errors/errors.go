// Package errors defines the service-level error taxonomy shared by every
// component, plus the RFC 7807 rendering used by the HTTP layer.
//
// Services never let raw storage or crypto errors escape: every public
// operation converts failures into a ServiceError carrying one of the kinds
// below, and the transport layer maps kinds to status codes
// (Validation→400, KeyFormat→400, NotFound→404, Conflict→409, rest→500).
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure.
type Kind string

const (
	// KindValidation marks bad or missing caller input. Never retried.
	KindValidation Kind = "VALIDATION"
	// KindNotFound marks a lookup that matched no row.
	KindNotFound Kind = "NOT_FOUND"
	// KindConflict marks a storage uniqueness violation, surfaced
	// distinctly so callers can react to "already exists" semantics.
	KindConflict Kind = "CONFLICT"
	// KindKeyFormat marks PEM/DER decode failures of stored or supplied
	// key material.
	KindKeyFormat Kind = "KEY_FORMAT"
	// KindInternal marks failures that indicate a bug or inconsistent key
	// state, e.g. a freshly signed token failing self-verification.
	KindInternal Kind = "INTERNAL"
	// KindStorage is the catch-all for persistence faults.
	KindStorage Kind = "STORAGE"
)

// ServiceError is the tagged error returned by every persistence-touching
// or crypto-touching operation.
type ServiceError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// E builds a ServiceError wrapping cause. cause may be nil.
func E(kind Kind, message string, cause error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Err: cause}
}

// Validation returns a KindValidation error with a formatted message.
func Validation(format string, args ...any) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a KindNotFound error for the named resource.
func NotFound(resource string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: resource + " not found"}
}

// Conflict returns a KindConflict error.
func Conflict(message string, cause error) *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: message, Err: cause}
}

// KeyFormat returns a KindKeyFormat error.
func KeyFormat(message string, cause error) *ServiceError {
	return &ServiceError{Kind: KindKeyFormat, Message: message, Err: cause}
}

// Internal returns a KindInternal error.
func Internal(message string, cause error) *ServiceError {
	return &ServiceError{Kind: KindInternal, Message: message, Err: cause}
}

// Storage returns a KindStorage error.
func Storage(message string, cause error) *ServiceError {
	return &ServiceError{Kind: KindStorage, Message: message, Err: cause}
}

// KindOf extracts the kind of err, or KindInternal when err is not a
// ServiceError.
func KindOf(err error) Kind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == kind
}

// MessageOf returns the user-visible message for err: the ServiceError
// message when tagged, otherwise a generic one so raw internals never leak
// into responses.
func MessageOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return "An unexpected error occurred while processing your request"
}
