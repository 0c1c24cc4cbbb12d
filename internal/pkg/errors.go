package pkg

import (
	"errors"
	"fmt"
	"net/http"
)

// Custom error types
var (
	// Authentication errors
	ErrUnauthorized = NewAppError("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrInvalidToken = NewAppError("INVALID_TOKEN", "Invalid or expired token", http.StatusUnauthorized)
	ErrTokenExpired = NewAppError("TOKEN_EXPIRED", "Token has expired", http.StatusUnauthorized)
	ErrForbidden    = NewAppError("FORBIDDEN", "Access denied", http.StatusForbidden)

	// Link errors
	ErrLinkNotFound        = NewAppError("LINK_NOT_FOUND", "Link not found", http.StatusNotFound)
	ErrLinkExpired         = NewAppError("LINK_EXPIRED", "Link has expired", http.StatusGone)
	ErrInvalidExpiration   = NewAppError("INVALID_EXPIRATION", "Expiration time is in the past", http.StatusBadRequest)
	ErrAliasConflict       = NewAppError("ALIAS_CONFLICT", "Alias already in use for this document", http.StatusConflict)
	ErrInvalidLinkPassword = NewAppError("INVALID_LINK_PASSWORD", "Link password missing or incorrect", http.StatusUnauthorized)

	// Document errors
	ErrDocumentNotFound = NewAppError("DOCUMENT_NOT_FOUND", "Document not found", http.StatusNotFound)
	ErrFileTooLarge     = NewAppError("FILE_TOO_LARGE", "File size exceeds limit", http.StatusRequestEntityTooLarge)
	ErrFileUploadFailed = NewAppError("FILE_UPLOAD_FAILED", "File upload failed", http.StatusInternalServerError)

	// Storage errors
	ErrStorageProviderError = NewAppError("STORAGE_PROVIDER_ERROR", "Storage provider error", http.StatusInternalServerError)

	// Validation errors
	ErrValidationFailed = NewAppError("VALIDATION_FAILED", "Validation failed", http.StatusBadRequest)
	ErrInvalidInput     = NewAppError("INVALID_INPUT", "Invalid input data", http.StatusBadRequest)

	// System errors
	ErrInternalServer = NewAppError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrDatabaseError  = NewAppError("DATABASE_ERROR", "Database error", http.StatusInternalServerError)
)

// AppError represents an application-specific error
type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %s)", e.Code, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches by error code so copies made by WithDetails or WithCause
// still compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails returns a copy of the error with details attached
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// WithCause returns a copy of the error with a cause attached
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// NewAppError creates a new application error
func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", ve[0].Message)
}

// IsAppError checks if error is an AppError
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
