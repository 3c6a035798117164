package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error codes used across the system. Adapters and core packages
// build on these rather than inventing ad-hoc strings so that callers can
// switch on Code without caring which package raised the error.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeConflict       = "CONFLICT"
	CodeForbidden      = "FORBIDDEN"
	CodeInternal       = "INTERNAL"
)

// AppError is the standard error type for the system. It carries a
// stable Code for programmatic handling, a human-readable Message, and
// an optional wrapped cause for diagnostics.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given code, message and optional cause.
func New(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Err: cause}
}

// Wrap attaches message context to err, preserving its code if it is
// already an AppError, otherwise classifying it as internal.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{Code: appErr.Code, Message: message, Err: err}
	}
	return &AppError{Code: CodeInternal, Message: message, Err: err}
}

// NotFound creates a not-found AppError.
func NotFound(message string, cause error) *AppError {
	return New(CodeNotFound, message, cause)
}

// InvalidArgument creates an invalid-argument AppError.
func InvalidArgument(message string, cause error) *AppError {
	return New(CodeInvalidArgument, message, cause)
}

// Conflict creates a conflict AppError.
func Conflict(message string, cause error) *AppError {
	return New(CodeConflict, message, cause)
}

// Forbidden creates a forbidden AppError.
func Forbidden(message string, cause error) *AppError {
	return New(CodeForbidden, message, cause)
}

// Internal creates an internal AppError.
func Internal(message string, cause error) *AppError {
	return New(CodeInternal, message, cause)
}

// Is reports whether err matches target, per the standard errors.Is contract.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target, per the
// standard errors.As contract.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// HTTPStatus maps an error's code to an HTTP status, defaulting to 500
// for codes it does not recognise or errors that are not an AppError.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
