// Package errors provides the coded error type shared by every engine package.
//
// Codes are grouped by range:
//   - 1-99: unknown/general
//   - 100-199: configuration and parameter validation
//   - 200-299: data loading and storage
//   - 300-399: indicator lookup and calculation
//   - 400-499: strategy graph loading and validation
//   - 600-699: backtest engine
//   - 700-799: market data and correlation
//   - 900-999: code generation
//
// Usage:
//
//	err := errors.New(errors.ErrCodeInvalidParameter, "period must be positive")
//	err := errors.Wrapf(errors.ErrCodeStrategyLoadFailed, cause, "failed to read %s", path)
//	if errors.HasCode(err, errors.ErrCodeStrategyInvalid) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error is an error with a stable numeric code.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates an Error without a cause.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf attaches a code and formatted message to cause.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
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

// Is is errors.Is re-exported so callers need a single errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As re-exported so callers need a single errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the first *Error in err's chain, or ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode reports whether err carries code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}
