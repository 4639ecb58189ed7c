package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes surfaced to API callers.
const (
	CodeMissingField        = "MISSING_FIELD"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeNotResolvable       = "NOT_RESOLVABLE"
	CodeDeliveryFailed      = "DELIVERY_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeValidation          = "VALIDATION_FAILED"
	CodeUnknownTechnician   = "UNKNOWN_TECHNICIAN"
	CodeTransitionForbidden = "TRANSITION_FORBIDDEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternal            = "INTERNAL_ERROR"
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
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

// NewMissingField reports a required input that is absent or empty.
func NewMissingField(field string) error {
	return NewDomainError(CodeMissingField, fmt.Sprintf("%s is required", field), http.StatusBadRequest,
		map[string]any{"field": field})
}

// NewInvalidTransition reports a target status unreachable from the current one.
func NewInvalidTransition(from, to string) error {
	return NewDomainError(CodeInvalidTransition, fmt.Sprintf("cannot move ticket from %q to %q", from, to),
		http.StatusConflict, map[string]any{"from": from, "to": to})
}

// NewTransitionForbidden reports a transition the acting technician may not perform.
func NewTransitionForbidden(message string, details map[string]any) error {
	return NewDomainError(CodeTransitionForbidden, message, http.StatusForbidden, details)
}

func NewUnknownTechnician(id string) error {
	return NewDomainError(CodeUnknownTechnician, "technician not found", http.StatusBadRequest,
		map[string]any{"technician_id": id})
}

func NewNotResolvable(contact string) error {
	return NewDomainError(CodeNotResolvable, "contact cannot be resolved to an email address",
		http.StatusUnprocessableEntity, map[string]any{"contact": contact})
}

// NewDeliveryError wraps a notification transport or service failure.
func NewDeliveryError(err error) error {
	return &DomainError{
		Code:       CodeDeliveryFailed,
		Message:    "notification delivery failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
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

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
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
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	return ToDomainError(err)
}
