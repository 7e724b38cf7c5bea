package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
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
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewDuplicateName signals a case-insensitive company name collision.
// The message is meant for direct display on the sign-up form.
func NewDuplicateName(name string) error {
	return NewDomainError(
		"DUPLICATE_NAME",
		fmt.Sprintf("Company name %q is already taken. Please choose a different name.", name),
		http.StatusConflict,
		map[string]any{"name": name},
	)
}

// NewInvalidPlan signals an unknown plan identifier during provisioning.
func NewInvalidPlan(planID string) error {
	return NewDomainError(
		"INVALID_PLAN",
		"Invalid plan selected. Please contact support.",
		http.StatusBadRequest,
		map[string]any{"plan_id": planID},
	)
}

// NewProvisioningFailed wraps a downstream failure during tenant setup.
func NewProvisioningFailed(step string, err error) error {
	return &DomainError{
		Code:       "PROVISIONING_FAILED",
		Message:    fmt.Sprintf("Failed to set up your account (%s). Please try again.", step),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"step": step},
		Err:        err,
	}
}

// NewQuotaExceeded signals a plan ceiling was reached. The message carries the
// limit value for display.
func NewQuotaExceeded(resource string, limit int) error {
	return NewDomainError(
		"QUOTA_EXCEEDED",
		fmt.Sprintf("You have reached your plan limit of %d %s", limit, resource),
		http.StatusUnprocessableEntity,
		map[string]any{"resource": resource, "limit": limit},
	)
}

// NewDuplicateApplication signals a (candidate, job) pair that already exists.
func NewDuplicateApplication() error {
	return NewDomainError(
		"DUPLICATE_APPLICATION",
		"Candidate has already applied to this job",
		http.StatusConflict,
		nil,
	)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
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
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
