// Package errors defines custom error types and error handling utilities for the suitability service.
// This package provides structured error types that map to stable error codes and HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode is a stable, machine-readable error identifier
type ErrorCode string

const (
	CodeInvalidTenant        ErrorCode = "invalid_tenant"
	CodeInvalidConfiguration ErrorCode = "invalid_configuration"
	CodeAlreadyExists        ErrorCode = "already_exists"
	CodeNotFound             ErrorCode = "not_found"
	CodeProtectedTenant      ErrorCode = "protected_tenant"
	CodeInvalidRequest       ErrorCode = "invalid_request"
	CodeInternal             ErrorCode = "internal_error"
	CodeStorage              ErrorCode = "storage_error"
)

// Error categories distinguish problems with the caller's data from problems on the server side.
const (
	CategoryClient = "client"
	CategoryServer = "server"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata
type AppError interface {
	error

	// Code returns the error code
	Code() ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) AppError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code        ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

func (e *baseError) Code() ErrorCode {
	return e.code
}

func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

func (e *baseError) Description() string {
	return e.description
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) WithCause(cause error) AppError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// NewError creates a new AppError with the specified parameters
func NewError(code ErrorCode, httpStatus int, description string, message string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Domain-Specific Error Constructors
// ================================================================================

// ErrInvalidTenant is returned when scoring is requested for an unknown tenant
func ErrInvalidTenant(tenantID string) AppError {
	return NewError(
		CodeInvalidTenant,
		http.StatusBadRequest,
		"The requested tenant does not exist.",
		fmt.Sprintf("Invalid tenant: %s", tenantID),
	).WithMetadata("tenant_id", tenantID)
}

// ErrInvalidConfiguration is returned when a tenant configuration is rejected on write
func ErrInvalidConfiguration(reason string) AppError {
	return NewError(
		CodeInvalidConfiguration,
		http.StatusBadRequest,
		"The tenant configuration is structurally invalid.",
		fmt.Sprintf("Invalid configuration structure: %s", reason),
	).WithMetadata("reason", reason)
}

// ErrAlreadyExists is returned when creating a tenant whose id is taken
func ErrAlreadyExists(tenantID string) AppError {
	return NewError(
		CodeAlreadyExists,
		http.StatusConflict,
		"A tenant with this id already exists.",
		fmt.Sprintf("Tenant %s already exists. Use PUT to update.", tenantID),
	).WithMetadata("tenant_id", tenantID)
}

// ErrNotFound is returned when a tenant configuration does not exist
func ErrNotFound(tenantID string) AppError {
	return NewError(
		CodeNotFound,
		http.StatusNotFound,
		"The requested tenant was not found.",
		fmt.Sprintf("Tenant not found: %s", tenantID),
	).WithMetadata("tenant_id", tenantID)
}

// ErrProtectedTenant is returned when deleting a built-in tenant
func ErrProtectedTenant(tenantID string) AppError {
	return NewError(
		CodeProtectedTenant,
		http.StatusForbidden,
		"Default tenants cannot be deleted.",
		fmt.Sprintf("Cannot delete default tenant: %s", tenantID),
	).WithMetadata("tenant_id", tenantID)
}

// ErrInvalidRequest is returned for malformed requests
func ErrInvalidRequest(message string) AppError {
	return NewError(
		CodeInvalidRequest,
		http.StatusBadRequest,
		"The request is malformed or missing a required parameter.",
		message,
	)
}

// ErrMissingRequiredParameter creates a missing required parameter error
func ErrMissingRequiredParameter(paramName string) AppError {
	return ErrInvalidRequest(fmt.Sprintf("Missing required parameter: %s", paramName)).
		WithMetadata("parameter", paramName)
}

// ErrInternal is returned for unexpected server-side conditions
func ErrInternal(message string) AppError {
	return NewError(
		CodeInternal,
		http.StatusInternalServerError,
		"The server encountered an unexpected condition.",
		message,
	)
}

// ErrStorage wraps a failure of the configuration persistence layer
func ErrStorage(operation string, cause error) AppError {
	return NewError(
		CodeStorage,
		http.StatusInternalServerError,
		"The configuration store is unavailable.",
		fmt.Sprintf("storage %s failed: %v", operation, cause),
	).WithCause(cause).WithMetadata("operation", operation)
}

// ================================================================================
// Error Validation Utilities
// ================================================================================

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code() == code
	}
	return false
}

// IsNotFoundError checks if an error is a not found error.
func IsNotFoundError(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsClientError reports whether err was caused by the caller's data
func IsClientError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus() >= 400 && appErr.HTTPStatus() < 500
	}
	return false
}

// Category returns CategoryClient for 4xx errors and CategoryServer otherwise
func Category(err error) string {
	if IsClientError(err) {
		return CategoryClient
	}
	return CategoryServer
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse represents the JSON structure for error responses
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Category         string                 `json:"category"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts any error to an ErrorResponse
func ToErrorResponse(err error) *ErrorResponse {
	if appErr, ok := AsAppError(err); ok {
		metadata := appErr.Metadata()
		if len(metadata) == 0 {
			metadata = nil
		}
		return &ErrorResponse{
			Error:            string(appErr.Code()),
			ErrorDescription: appErr.Error(),
			Category:         Category(appErr),
			Metadata:         metadata,
		}
	}

	return &ErrorResponse{
		Error:            string(CodeInternal),
		ErrorDescription: "An unexpected error occurred",
		Category:         CategoryServer,
	}
}

// HTTPStatus returns the status code that should be sent for err
func HTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
