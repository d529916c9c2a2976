package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies an error for transport mapping and caller branching.
type Code string

const (
	// CodeValidation marks local field-level failures. These never reach
	// the store; the caller corrects the input and resubmits.
	CodeValidation Code = "validation"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	// CodeFetch and CodePersist are remote failures surfaced as a single
	// banner message; prior state is retained by the caller.
	CodeFetch    Code = "fetch_failed"
	CodePersist  Code = "persist_failed"
	CodeInternal Code = "internal"
)

// Error is the coded error used across service boundaries. Fields carries
// per-field messages for validation failures and is nil otherwise.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message while preserving the cause chain.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// NewValidation builds a validation error carrying the field→message map.
func NewValidation(fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// FieldsOf extracts the validation field map from err, or nil.
func FieldsOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// ToHTTPStatus keeps the error→status mapping in one place so every
// handler produces consistent responses.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeFetch, CodePersist:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
