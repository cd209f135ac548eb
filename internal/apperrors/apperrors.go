package apperrors

import (
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeForbidden  Code = "FORBIDDEN"
	CodeConflict   Code = "CONFLICT"
	CodeGone       Code = "GONE"
	CodeInternal   Code = "INTERNAL_ERROR"
)

// Error carries an API error code, a client-facing message and the HTTP
// status it renders as. Err holds the wrapped cause and never reaches the
// client.
type Error struct {
	Code       Code
	Message    string
	Details    any
	HTTPStatus int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func New(code Code, message string, httpStatus int) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Validation(details any) *Error {
	return New(CodeValidation, "Validation failed", http.StatusUnprocessableEntity).WithDetails(details)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message, http.StatusNotFound)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func Conflict(message string) *Error {
	return New(CodeConflict, message, http.StatusConflict)
}

func Gone(message string) *Error {
	return New(CodeGone, message, http.StatusGone)
}

func Internal(err error) *Error {
	return &Error{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
