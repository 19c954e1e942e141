package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to callers. Lifecycle and assignment failures carry
// their own codes so clients can react per kind (retry, re-select, give up).
const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeNoCapacityAvailable = "NO_CAPACITY_AVAILABLE"
	CodeCapacityExceeded    = "CAPACITY_EXCEEDED"
	CodeInvalidRating       = "INVALID_RATING"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
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

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewInvalidTransition reports an operation illegal for the current status.
func NewInvalidTransition(operation string, current string) error {
	return NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("%s not allowed for status %s", operation, current),
		http.StatusConflict,
		map[string]any{"operation": operation, "status": current})
}

// NewNoCapacityAvailable reports that no eligible staff exists at selection time.
func NewNoCapacityAvailable(hotelID string) error {
	return NewDomainError(CodeNoCapacityAvailable,
		"no staff member with free capacity",
		http.StatusConflict,
		map[string]any{"hotel_id": hotelID})
}

// NewCapacityExceeded reports a capacity race lost at commit time.
func NewCapacityExceeded(staffID string) error {
	return NewDomainError(CodeCapacityExceeded,
		"staff member is at capacity",
		http.StatusConflict,
		map[string]any{"staff_id": staffID})
}

// NewInvalidRating reports a rating out of range or already set.
func NewInvalidRating(message string) error {
	return NewDomainError(CodeInvalidRating, message, http.StatusBadRequest, nil)
}

// NewStoreUnavailable wraps a persistence failure. The operation is treated
// as not committed.
func NewStoreUnavailable(err error) error {
	return &DomainError{
		Code:       CodeStoreUnavailable,
		Message:    "request store unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
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
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// CodeOf extracts the error code, defaulting to INTERNAL_ERROR.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Code
}

func MapError(err error) error {
	return ToDomainError(err)
}
