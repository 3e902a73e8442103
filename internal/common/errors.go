package common

import (
	"errors"
	"net/http"
)

// Error codes for the failure taxonomy surfaced at the caller boundary.
const (
	CodeValidation  = "VALIDATION"
	CodeNotFound    = "NOT_FOUND"
	CodeIDExhausted = "ID_EXHAUSTED"
	CodeStore       = "STORE_ERROR"
	CodeInternal    = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// ValidationError reports malformed caller input. Never retried.
func ValidationError(message string, details any) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest, Details: details}
}

// NotFoundError reports an operation against an unknown id.
func NotFoundError(message string, details any) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, HTTPStatus: http.StatusNotFound, Details: details}
}

// IDExhaustedError reports that the purchase id retry budget ran out.
func IDExhaustedError(err error) *AppError {
	return NewAppError(CodeIDExhausted, "could not allocate a unique purchase id", http.StatusInternalServerError, err)
}

// StoreError wraps a persistence failure. The underlying error stays
// server-side; clients only see the code and message.
func StoreError(err error) *AppError {
	return NewAppError(CodeStore, "transaction store unavailable", http.StatusInternalServerError, err)
}
