package show

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes cuesheet errors.
type ErrorCode string

const (
	// CodeNotFound indicates a referenced cue, camera assignment or script does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeInvalidPosition indicates a malformed insert-position request.
	CodeInvalidPosition ErrorCode = "INVALID_POSITION"

	// CodeNoCues indicates the operation needs at least one cue.
	CodeNoCues ErrorCode = "NO_CUES"

	// CodeValidation indicates a malformed bulk import or duplicate assignment.
	CodeValidation ErrorCode = "VALIDATION_ERROR"

	// CodeTransportFailure indicates a send to one connection failed.
	CodeTransportFailure ErrorCode = "TRANSPORT_FAILURE"

	// CodeUnauthorized indicates a missing or invalid session, or a wrong password.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Error is the structured error returned by core operations.
//
// Errors compare equal under errors.Is when their codes match, so callers
// can test against the sentinel values below:
//
//	if errors.Is(err, show.ErrNotFound) { ... }
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Problems lists individual validation failures (CodeValidation only).
	Problems []string

	// Err is the wrapped cause, if any.
	Err error
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound         = &Error{Code: CodeNotFound}
	ErrInvalidPosition  = &Error{Code: CodeInvalidPosition}
	ErrNoCues           = &Error{Code: CodeNoCues}
	ErrValidation       = &Error{Code: CodeValidation}
	ErrTransportFailure = &Error{Code: CodeTransportFailure}
	ErrUnauthorized     = &Error{Code: CodeUnauthorized}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// NotFound creates a CodeNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidPosition creates a CodeInvalidPosition error.
func InvalidPosition(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidPosition, Message: fmt.Sprintf(format, args...)}
}

// NoCues creates a CodeNoCues error.
func NoCues(message string) *Error {
	return &Error{Code: CodeNoCues, Message: message}
}

// Validation creates a CodeValidation error carrying individual problems.
func Validation(message string, problems ...string) *Error {
	return &Error{Code: CodeValidation, Message: message, Problems: problems}
}

// TransportFailure wraps a send error for one connection.
func TransportFailure(connID string, err error) *Error {
	return &Error{
		Code:    CodeTransportFailure,
		Message: fmt.Sprintf("send to connection %s failed", connID),
		Err:     err,
	}
}

// Unauthorized creates a CodeUnauthorized error.
func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is a CodeNotFound error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsValidation reports whether err is a CodeValidation error.
func IsValidation(err error) bool {
	return CodeOf(err) == CodeValidation
}
