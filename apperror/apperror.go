// Package apperror defines a centralized system for application-specific errors.
// Every layer (store, auth, graph, server) reports failures through AppError so
// the HTTP shell can pick a status code and the GraphQL executor can attach a
// machine-readable code to field errors.
package apperror

import (
	"errors"
	"fmt"
	// `net/http` is used for HTTP status codes.
	"net/http"
)

// ErrorType defines the type of application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// ConfigError represents an error related to application configuration
	ConfigError
	// InvalidTokenError represents a bearer token that failed signature verification
	InvalidTokenError
	// NotFoundError represents a resource not found error
	NotFoundError
	// ValidationError represents invalid input or fixture data
	ValidationError
	// BadRequestError represents a generic bad request
	BadRequestError
	// InternalError represents a generic internal server error
	InternalError
)

// AppError is a custom error type for the application.
// It allows wrapping an underlying error (`Err`) for more detailed debugging
// while only `Message` is ever shown to API clients.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error // Underlying error
}

// Error returns the string representation of the error, satisfying the `error` interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error so `errors.Is` and `errors.As` can walk the chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error type
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ConfigError:
		return http.StatusInternalServerError
	case InvalidTokenError:
		return http.StatusUnauthorized
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError:
		return http.StatusBadRequest
	case BadRequestError:
		return http.StatusBadRequest
	case InternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the stable, client-facing identifier of the error type.
func (e *AppError) Code() string {
	switch e.Type {
	case ConfigError:
		return "CONFIG_ERROR"
	case InvalidTokenError:
		return "INVALID_TOKEN"
	case NotFoundError:
		return "NOT_FOUND"
	case ValidationError:
		return "VALIDATION_ERROR"
	case BadRequestError:
		return "BAD_REQUEST"
	case InternalError:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Extensions satisfies graphql-go's gqlerrors.ExtendedError, so resolver errors
// carry `{"code": ...}` in the `extensions` entry of the GraphQL response.
func (e *AppError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code()}
}

// NewAppError creates a new AppError. This is a generic constructor.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
	}
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, message, underlyingError)
}

// NewInvalidTokenError creates a new InvalidTokenError
func NewInvalidTokenError(message string, underlyingError error) *AppError {
	return NewAppError(InvalidTokenError, message, underlyingError)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(message string, underlyingError error) *AppError {
	return NewAppError(NotFoundError, message, underlyingError)
}

// NewValidationError creates a new ValidationError
func NewValidationError(message string, underlyingError error) *AppError {
	return NewAppError(ValidationError, message, underlyingError)
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, message, underlyingError)
}

// ErrorResponse represents a generic error response payload for API clients.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToResponse converts an AppError to an ErrorResponse suitable for API responses.
// Only the user-facing `Message` is included, not the underlying `Err` details.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Code: e.Code()}
}

// FromError finds the first *AppError in err's chain.
// It returns the *AppError and true if successful, otherwise nil and false.
func FromError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Helper functions to check error types.

// IsInvalidToken checks if an error is an InvalidTokenError
func IsInvalidToken(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == InvalidTokenError
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsValidationError checks if an error is a Validation error
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}

// IsConfigError checks if an error is a Config error
func IsConfigError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ConfigError
}
