// Package errors provides standardized error handling for the recruitment platform.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeNoChange         ErrorCode = "NO_CHANGE"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	ErrCodeClubNotFound     ErrorCode = "CLUB_NOT_FOUND"
	ErrCodePositionNotFound ErrorCode = "POSITION_NOT_FOUND"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
)

// Sentinel values for errors.Is matching across package boundaries.
var (
	ErrUnauthorized     = errors.New("UNAUTHORIZED")
	ErrNotFound         = errors.New("NOT_FOUND")
	ErrInvalidStatus    = errors.New("INVALID_STATUS")
	ErrNoChange         = errors.New("NO_CHANGE")
	ErrStoreUnavailable = errors.New("STORE_UNAVAILABLE")
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets callers match a StandardError against the package sentinels.
func (e *StandardError) Is(target error) bool {
	switch e.Code {
	case ErrCodeUnauthorized:
		return target == ErrUnauthorized
	case ErrCodeNotFound, ErrCodeClubNotFound, ErrCodePositionNotFound:
		return target == ErrNotFound
	case ErrCodeInvalidStatus:
		return target == ErrInvalidStatus
	case ErrCodeNoChange:
		return target == ErrNoChange
	case ErrCodeStoreUnavailable:
		return target == ErrStoreUnavailable
	}
	return false
}

// NewUnauthorizedError creates a non-retryable authorization error.
func NewUnauthorizedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Caller is not an authorized administrator",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable lookup error naming the identifier.
func NewNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("applicationId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStatusError creates a non-retryable status validation error listing
// the accepted enumeration.
func NewInvalidStatusError(requested string, valid []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStatus,
		Message:   fmt.Sprintf("Invalid status %q. Must be one of: %s", requested, strings.Join(valid, ", ")),
		Details:   fmt.Sprintf("requested: %s", requested),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoChangeError reports a write that was attempted but not applied.
func NewNoChangeError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoChange,
		Message:   "Status update was attempted but not applied",
		Details:   fmt.Sprintf("applicationId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable backing-store error.
func NewStoreUnavailableError(store string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   fmt.Sprintf("Backing store '%s' unavailable", store),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewClubNotFoundError creates a non-retryable club lookup error.
func NewClubNotFoundError(slug string) *StandardError {
	return &StandardError{
		Code:      ErrCodeClubNotFound,
		Message:   "Club not found",
		Details:   fmt.Sprintf("slug: %s", slug),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPositionNotFoundError creates a non-retryable position lookup error.
func NewPositionNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodePositionNotFound,
		Message:   "Position not found",
		Details:   fmt.Sprintf("positionId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable payload validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HTTPStatus maps an error code to the HTTP status the API layer reports.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUnauthorized:
		return 401
	case ErrCodeNotFound, ErrCodeClubNotFound, ErrCodePositionNotFound:
		return 404
	case ErrCodeInvalidStatus, ErrCodeValidationFailed:
		return 400
	case ErrCodeNoChange:
		return 409
	case ErrCodeStoreUnavailable:
		return 503
	default:
		return 500
	}
}
