// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so handlers can map it to a
// transport status without string matching.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindAuthorization     Kind = "authorization"
	KindInvalidTransition Kind = "invalid_transition"
	KindStock             Kind = "stock"
	KindConcurrency       Kind = "concurrency"
	KindNotFound          Kind = "not_found"
	KindUpstream          Kind = "upstream_unavailable"
)

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

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func Authorization(format string, args ...interface{}) *Error {
	return newError(KindAuthorization, format, args...)
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return newError(KindInvalidTransition, format, args...)
}

func Stock(format string, args ...interface{}) *Error {
	return newError(KindStock, format, args...)
}

func Concurrency(format string, args ...interface{}) *Error {
	return newError(KindConcurrency, format, args...)
}

func NotFound(resource string) *Error {
	return newError(KindNotFound, "%s not found", resource)
}

// Upstream wraps a backend-service failure (database, object storage)
// so callers surface a generic retry message while the cause is logged.
func Upstream(err error, format string, args ...interface{}) *Error {
	e := newError(KindUpstream, format, args...)
	e.Err = err
	return e
}

// KindOf extracts the Kind from anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
