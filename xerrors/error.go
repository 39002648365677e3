// Package xerrors provides the structured error-code taxonomy used across
// the backtester: configuration, data, indicator, execution, and snapshot
// errors. Only the first three categories are fatal; the rest are carried
// for uniform log classification.
package xerrors

import (
	"errors"
	"fmt"
)

// Error is a structured error with a category code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code and message.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf wraps an existing error with a code and formatted message.
func Wrapf(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is wraps the standard errors.Is for chain matching.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps the standard errors.As for chain matching.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the Code from an error, or CodeUnknown if err isn't an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given Code.
func HasCode(err error, code Code) bool {
	return GetCode(err) == code
}

// InsufficientDataError reports that fewer input points were available than
// a calculation requires (an indicator lookback, or the event loop's
// max-lookback bar count).
type InsufficientDataError struct {
	Required int
	Actual   int
	Subject  string // e.g. "SMA(10)" or "max_lookback"
}

func NewInsufficientDataError(required, actual int, subject string) *InsufficientDataError {
	return &InsufficientDataError{Required: required, Actual: actual, Subject: subject}
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d, have %d", e.Subject, e.Required, e.Actual)
}

// IsInsufficientDataError reports whether err (or a wrapped cause) is an
// InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var e *InsufficientDataError
	return errors.As(err, &e)
}
