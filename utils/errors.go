package utils

import (
	"errors"
	"fmt"
	"net/http"

	"resqlink/models"
)

// ServiceError represents a service-level error with context
type ServiceError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Details    string `json:"details,omitempty"`
	Cause      error  `json:"-"` // Original error, not exposed in JSON
}

func (e ServiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e ServiceError) Unwrap() error {
	return e.Cause
}

// GetServiceError extracts a ServiceError from an error chain
func GetServiceError(err error) (ServiceError, bool) {
	var serviceErr ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return ServiceError{}, false
}

// Common service error constructors

func NewValidationError(message string) error {
	return ServiceError{
		Code:       models.ErrCodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewUnauthorizedError(message string) error {
	return ServiceError{
		Code:       models.ErrCodeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string) error {
	return ServiceError{
		Code:       models.ErrCodeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewNotFoundError(resource string) error {
	return ServiceError{
		Code:       models.ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

// NewConflictError maps to 400: the API reports duplicate assignment as a
// bad request, not 409.
func NewConflictError(message string) error {
	return ServiceError{
		Code:       models.ErrCodeConflict,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewInvalidTransitionError(from, to string) error {
	return ServiceError{
		Code:       models.ErrCodeInvalidTransition,
		Message:    fmt.Sprintf("Cannot change status from %s to %s", from, to),
		StatusCode: http.StatusBadRequest,
	}
}

func NewInternalError(message string) error {
	return ServiceError{
		Code:       models.ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func NewDatabaseError(operation string, cause error) error {
	return ServiceError{
		Code:       "DATABASE_ERROR",
		Message:    fmt.Sprintf("Database operation failed: %s", operation),
		Cause:      cause,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewDependencyError wraps a failed external call (push provider, SMS). These
// are logged by the dispatch path and never surfaced to API callers.
func NewDependencyError(provider string, cause error) error {
	return ServiceError{
		Code:       models.ErrCodeDependency,
		Message:    fmt.Sprintf("%s call failed", provider),
		Cause:      cause,
		StatusCode: http.StatusServiceUnavailable,
	}
}

// Business-specific shorthands

func NewEmergencyNotFoundError() error {
	return NewNotFoundError("Emergency")
}

func NewUserNotFoundError() error {
	return NewNotFoundError("User")
}

func NewAlreadyAssignedError() error {
	return NewConflictError("Already assigned to this emergency")
}

func NewInvalidCredentialsError() error {
	return NewUnauthorizedError("Invalid credentials")
}
