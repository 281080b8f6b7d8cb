package browser

import (
	"errors"
	"fmt"
)

// Code classifies session failures for the HTTP boundary.
type Code string

const (
	// CodeConnection means the backend was unreachable or rejected the session.
	CodeConnection Code = "connection"
	// CodeNavigation means the page did not begin loading within the page-load timeout.
	CodeNavigation Code = "navigation_timeout"
	// CodeReadiness means the readiness marker never appeared within the ready timeout.
	CodeReadiness Code = "readiness_timeout"
	// CodeProtocol means the automation protocol failed mid-session.
	CodeProtocol Code = "protocol"
	// CodeInternal covers anything unanticipated.
	CodeInternal Code = "internal"
)

// Error is the domain error returned by session operations.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code Code, err error, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func codeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsConnection reports whether err is a session-open failure.
func IsConnection(err error) bool {
	return codeOf(err) == CodeConnection
}

// IsTimeout reports whether err is a page-load or readiness timeout.
func IsTimeout(err error) bool {
	c := codeOf(err)
	return c == CodeNavigation || c == CodeReadiness
}

// IsProtocol reports whether err is an automation-protocol failure.
func IsProtocol(err error) bool {
	return codeOf(err) == CodeProtocol
}
