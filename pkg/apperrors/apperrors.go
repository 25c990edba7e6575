package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced in API error envelopes.
const (
	CodeAuthFailed       = "AUTH_FAILED"
	CodeAuthRequired     = "AUTH_REQUIRED"
	CodeStoreWriteFailed = "STORE_WRITE_FAILED"
	CodeStoreReadFailed  = "STORE_READ_FAILED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeForbidden        = "FORBIDDEN"
	CodeInternal         = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewAuthError reports an authentication failure with a user-facing
// message. Distinct messages are expected per failure cause.
func NewAuthError(message string) error {
	return NewDomainError(CodeAuthFailed, message, http.StatusUnauthorized, nil)
}

// NewAuthRequired reports a mutation attempted without a resolved identity.
func NewAuthRequired(message string) error {
	if message == "" {
		message = "authentication required"
	}
	return NewDomainError(CodeAuthRequired, message, http.StatusUnauthorized, nil)
}

// NewStoreWriteError wraps a create/update/delete persistence failure.
func NewStoreWriteError(err error) error {
	return &DomainError{
		Code:       CodeStoreWriteFailed,
		Message:    "ticket store write failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewStoreReadError wraps a subscription setup or delivery failure.
func NewStoreReadError(err error) error {
	return &DomainError{
		Code:       CodeStoreReadFailed,
		Message:    "ticket store read failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Is reports whether err carries the given error code.
func Is(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
