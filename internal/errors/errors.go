package errors

import (
	"fmt"
)

type ErrorCode string

const (
	InvalidUsage  ErrorCode = "invalid_usage"
	InvalidInput  ErrorCode = "invalid_input"
	OutputError   ErrorCode = "output_error"
	InternalError ErrorCode = "internal_error"
)

// AppError is a run-level failure: bad invocation, unreadable input, or a
// broken output sink. Semantically invalid events are not errors; the
// processor discards them without ever producing one of these.
type AppError struct {
	Code    ErrorCode
	Message string
	Details string
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// ExitCode maps the error to a process exit code.
func (e *AppError) ExitCode() int {
	switch e.Code {
	case InvalidUsage:
		return 2
	default:
		return 1
	}
}

// Predefined errors for common cases
var (
	ErrMissingInput = NewAppError(InvalidUsage, "exactly one input file path is required")
)
