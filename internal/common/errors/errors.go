// Package errors provides the standardized error taxonomy for the activity
// framework and its HTTP mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Code identifies a framework error category.
type Code string

const (
	CodeUnknownKind       Code = "UNKNOWN_KIND"
	CodeDuplicateKind     Code = "DUPLICATE_KIND"
	CodeInvalidKind       Code = "INVALID_KIND"
	CodeInvalidConfig     Code = "INVALID_CONFIG"
	CodeInvalidResponse   Code = "INVALID_RESPONSE"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeNotFound          Code = "NOT_FOUND"
)

// Error is a structured application error. ValidTransitions is populated only
// for INVALID_TRANSITION so callers can report the permitted targets.
type Error struct {
	Code             Code      `json:"code"`
	Message          string    `json:"message"`
	Details          string    `json:"details,omitempty"`
	ValidTransitions []string  `json:"valid_transitions,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewUnknownKind reports a lookup of an unregistered kind identifier.
func NewUnknownKind(kindID string) *Error {
	return &Error{
		Code:      CodeUnknownKind,
		Message:   "unknown activity kind",
		Details:   fmt.Sprintf("kind: %s", kindID),
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateKind reports an attempt to re-register a kind identifier.
func NewDuplicateKind(kindID string) *Error {
	return &Error{
		Code:      CodeDuplicateKind,
		Message:   "activity kind is already registered",
		Details:   fmt.Sprintf("kind: %s", kindID),
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidKind reports a registration whose constructor or schema does not
// satisfy the kind contract.
func NewInvalidKind(kindID, details string) *Error {
	return &Error{
		Code:      CodeInvalidKind,
		Message:   "activity kind registration is invalid",
		Details:   fmt.Sprintf("kind: %s, %s", kindID, details),
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidConfig reports a configuration that failed schema or semantic
// validation. Validation messages are joined into details.
func NewInvalidConfig(kindID string, validationErrors []string) *Error {
	return &Error{
		Code:      CodeInvalidConfig,
		Message:   "activity configuration is invalid",
		Details:   fmt.Sprintf("kind: %s, %s", kindID, strings.Join(validationErrors, "; ")),
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidResponse reports a participant submission that violates the kind's
// response rules. Reason is human readable and safe to surface to clients.
func NewInvalidResponse(reason string) *Error {
	return &Error{
		Code:      CodeInvalidResponse,
		Message:   reason,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTransition reports a state move the transition table forbids,
// carrying the list of valid targets from the current state.
func NewInvalidTransition(current, target string, validTargets []string) *Error {
	return &Error{
		Code:             CodeInvalidTransition,
		Message:          fmt.Sprintf("invalid state transition: %s -> %s", current, target),
		ValidTransitions: validTargets,
		Timestamp:        time.Now().UTC(),
	}
}

// NewNotFound reports a missing record at the persistence boundary.
func NewNotFound(resource, id string) *Error {
	return &Error{
		Code:      CodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the framework error code, or empty when err is not a
// framework error.
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsCode reports whether err is a framework error with the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps a framework error to a transport status. Unrecognized
// errors map to 500.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeUnknownKind, CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateKind:
		return http.StatusConflict
	case CodeInvalidKind, CodeInvalidConfig, CodeInvalidResponse, CodeInvalidTransition:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
