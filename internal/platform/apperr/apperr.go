// Copyright (c) 2026 Bookworm. All rights reserved.
// Author: dev@bookwormhq.dev

/*
Package apperr defines the centralized error taxonomy for Bookworm.

Every rule violation raised by the domain layer is an [AppError] carrying a
stable machine-readable code and a human-readable message. The code set is
the contract between the domain layer and the presentation layer: transport
code never inspects messages, only codes.

Architecture:

  - AppError: A struct containing a stable Code, a client-safe Message, and
    an HTTP status used by the (thin) presentation layer.
  - Details: Per-rule violation entries. Password policy checks are the one
    place where several broken rules are aggregated into a single AppError.
  - Cause: Server-side only; never serialized to clients.

Domain packages derive their specific failures from the generic constructors
below and stamp their own code via [AppError.WithCode].
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical failure type for the Bookworm domain.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to
// clients, so storage and hashing internals cannot leak through error paths.
type AppError struct {
	// Code is a stable machine-readable identifier (e.g. "USER_NOT_FOUND").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status the presentation layer maps to.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-rule violation entries for aggregated failures.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single rule-level violation.
type FieldError struct {
	// Field is the logical field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the broken rule.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCode returns a copy of the error with a domain-specific code.
//
// The copy keeps the receiver usable as a shared sentinel value.
//
// Example:
//
//	apperr.NotFound("Book").WithCode("BOOK_NOT_FOUND")
func (e *AppError) WithCode(code string) *AppError {
	clone := *e
	clone.Code = code
	return &clone
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-rule details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       "UNPROCESSABLE",
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for maintenance mode.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries the given stable code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
