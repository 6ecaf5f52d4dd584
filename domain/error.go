package domain

import (
	"errors"
	"fmt"
)

type Error struct {
	orig error
	msg  string
	code error
}

// Error returns only the public message. The wrapped error stays reachable through Unwrap
// so upstream details are logged but never rendered to a client.
func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

// Is lets errors.Is(err, domain.ErrNotFound) match on the code.
func (e *Error) Is(target error) bool {
	return e.code == target
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

// CodeOf returns the code of the first domain error in err's chain, or nil.
func CodeOf(err error) error {
	var derr *Error
	if !errors.As(err, &derr) {
		return nil
	}
	return derr.code
}

var (
	// ErrValidation will throw if a required input is missing or malformed
	ErrValidation = errors.New("validation error")
	// ErrNotFound will throw if the provider has no match for the query
	ErrNotFound = errors.New("not found")
	// ErrUpstream will throw if talking to an external provider failed
	ErrUpstream = errors.New("upstream error")
	// ErrPositionUnavailable will throw if the device position is denied or unknown
	ErrPositionUnavailable = errors.New("position unavailable")
)

const (
	MessageLocationRequired    = "Location is required"
	MessageNoCoordinatesFound  = "No coordinates found"
	MessageInternalServerError = "Internal server error"
)
