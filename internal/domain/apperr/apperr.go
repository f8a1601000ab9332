// Package apperr carries the domain error taxonomy shared by services
// and the HTTP layer. Services fail fast with one of these kinds;
// handlers translate them to status codes in a single place.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Kind discriminates domain failures.
type Kind string

const (
	// KindNotFound: the referenced cattle or record does not exist or
	// lies outside the actor's organization.
	KindNotFound Kind = "not_found"
	// KindForbidden: the actor lacks role or assignment access.
	KindForbidden Kind = "forbidden"
	// KindInvalidState: the operation is not permitted from the current
	// lifecycle state.
	KindInvalidState Kind = "invalid_state"
	// KindTooEarly: a time-gated operation was attempted before its
	// window opened.
	KindTooEarly Kind = "too_early"
	// KindValidation: malformed input.
	KindValidation Kind = "validation"
	// KindConflict: a uniqueness constraint would be violated.
	KindConflict Kind = "conflict"
)

// Error is a classified domain error.
type Error struct {
	Kind Kind
	Msg  string
	// EligibleAt is set only for KindTooEarly and carries the first
	// instant at which the operation becomes valid.
	EligibleAt time.Time
}

func (e *Error) Error() string {
	return e.Msg
}

// NotFound builds a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden builds an access-denied error.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// InvalidState builds an invalid-state error.
func InvalidState(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Msg: fmt.Sprintf(format, args...)}
}

// TooEarly builds a too-early error carrying the eligible date.
func TooEarly(eligibleAt time.Time, format string, args ...any) *Error {
	return &Error{Kind: KindTooEarly, Msg: fmt.Sprintf(format, args...), EligibleAt: eligibleAt}
}

// Validation builds a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds a conflict error.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of err, or "" when err is not a domain
// error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
