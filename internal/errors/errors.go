// Package errors classifies the failures the bridge can surface to a Lemmy
// client. Every failure is terminal for the action that produced it; nothing
// in this package drives retries.
package errors

import (
	"errors"
	"fmt"
)

// Kind is the classification of an error for handling purposes.
type Kind int

const (
	// KindRemoteFailure is an upstream (Bluesky) call that was rejected or
	// could not be completed. It is the default for unclassified errors.
	KindRemoteFailure Kind = iota
	// KindUnauthenticated means there is no valid session or credentials.
	KindUnauthenticated
	// KindNotFound means a handle or reference is absent from the cache or
	// the remote lookup came back empty.
	KindNotFound
	// KindUnsupported means the remote system has no analogous capability.
	KindUnsupported
	// KindInvalid means the caller sent malformed input.
	KindInvalid
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindRemoteFailure:
		return "remote_failure"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindUnsupported:
		return "unsupported"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrInvalidSession   = errors.New("stored session is incomplete")
	ErrNotFound         = errors.New("not found, please refresh")
	ErrUnsupported      = errors.New("not supported by the remote service")
	ErrUpstream         = errors.New("upstream request failed")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrSessionNotStored = errors.New("session not stored")
)

// Error wraps an error with its classification and the operation that
// produced it.
type Error struct {
	Kind      Kind
	Component string
	Op        string
	Msg       string
	Err       error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s.%s: %s: %v", e.Component, e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s.%s: %s", e.Component, e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s.%s: %v", e.Component, e.Op, e.Err)
	default:
		return fmt.Sprintf("%s.%s: %s", e.Component, e.Op, e.Kind)
	}
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error, component, op, msg string) *Error {
	return &Error{Kind: kind, Component: component, Op: op, Msg: msg, Err: err}
}

// NotFound reports a missing handle or remote item.
func NotFound(component, op, msg string) error {
	return newError(KindNotFound, ErrNotFound, component, op, msg)
}

// Unsupported reports a capability the remote system does not have. Callers
// return it before making any remote call.
func Unsupported(component, op string) error {
	return newError(KindUnsupported, ErrUnsupported, component, op, "")
}

// Unauthenticated reports a missing or rejected session.
func Unauthenticated(err error, component, op string) error {
	if err == nil {
		err = ErrNotLoggedIn
	}
	return newError(KindUnauthenticated, err, component, op, "")
}

// Invalid reports malformed caller input.
func Invalid(component, op, msg string) error {
	return newError(KindInvalid, ErrInvalidArgument, component, op, msg)
}

// WrapRemote wraps an upstream failure. A nil err yields nil.
func WrapRemote(err error, component, op, action string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		// keep the classification chosen closer to the wire
		return newError(e.Kind, err, component, op, action)
	}
	return newError(KindRemoteFailure, err, component, op, action)
}

// Wrap wraps err with the given kind. A nil err yields nil.
func Wrap(kind Kind, err error, component, op, msg string) error {
	if err == nil {
		return nil
	}
	return newError(kind, err, component, op, msg)
}

// KindOf returns the classification of err. Unclassified errors are remote
// failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnsupported):
		return KindUnsupported
	case errors.Is(err, ErrNotLoggedIn), errors.Is(err, ErrInvalidSession):
		return KindUnauthenticated
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalid
	}
	return KindRemoteFailure
}

// IsNotFound checks if err is a NotFound failure.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// IsUnsupported checks if err is an Unsupported failure.
func IsUnsupported(err error) bool { return err != nil && KindOf(err) == KindUnsupported }

// IsUnauthenticated checks if err is an Unauthenticated failure.
func IsUnauthenticated(err error) bool { return err != nil && KindOf(err) == KindUnauthenticated }

// IsRemoteFailure checks if err is a RemoteFailure.
func IsRemoteFailure(err error) bool { return err != nil && KindOf(err) == KindRemoteFailure }

// Is, As and New re-export the standard library helpers so callers importing
// this package do not also need the stdlib one.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)
