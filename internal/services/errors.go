package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/learning-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Upstream integrations (media store, payment gateway)
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// Catalog errors
	ErrCourseNotFound        = errors.New("course not found")
	ErrLectureNotFound       = errors.New("lecture not found")
	ErrPublishStateUnchanged = errors.New("course already in requested publish state")

	// Purchase errors
	ErrPurchaseNotFound  = errors.New("purchase not found")
	ErrInvalidSignature  = errors.New("webhook signature verification failed")
	ErrCourseNotForSale  = errors.New("course has no price")
	ErrPaymentNotEnabled = errors.New("payment gateway not configured")

	// Progress errors
	ErrProgressNotFound = errors.New("course progress not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// UpstreamError records which integration failed.
type UpstreamError struct {
	Service string
	Err     error
}

func (ue *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", ue.Service, ue.Err)
}

func (ue *UpstreamError) Unwrap() []error {
	return []error{ErrUpstreamUnavailable, ue.Err}
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// NewFieldError wraps a single field failure as ValidationErrors.
func NewFieldError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{*apperrors.NewValidationError(field, message, value)}
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func NewUpstreamError(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrLectureNotFound) ||
		errors.Is(err, ErrPurchaseNotFound) ||
		errors.Is(err, ErrProgressNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	var pe *PermissionError
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrCourseNotForSale) || errors.Is(err, ErrInvalidSignature) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrPublishStateUnchanged)
}

// IsUpstream checks if error came from an unavailable integration
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}
