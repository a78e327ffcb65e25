package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Common error types for the order portal client
var (
	// Authentication errors
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidToken     = errors.New("invalid token")
	ErrNoRefreshToken   = errors.New("no refresh token")

	// Authorization errors
	ErrForbidden = errors.New("forbidden")

	// Backend errors
	ErrUnsuccessful = errors.New("request unsuccessful")
	ErrTransport    = errors.New("transport failure")
	ErrNotFound     = errors.New("not found")

	// Client errors
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// APIError is returned for every failed call against the API gateway.
// Cause is one of the sentinels above so callers can branch with Is.
type APIError struct {
	StatusCode int
	Message    string
	Cause      error
}

// NewAPIError maps an HTTP status to an APIError with the matching sentinel cause.
func NewAPIError(statusCode int, message string) *APIError {
	var cause error
	switch {
	case statusCode == http.StatusUnauthorized:
		cause = ErrUnauthorized
	case statusCode == http.StatusForbidden:
		cause = ErrForbidden
	case statusCode == http.StatusNotFound:
		cause = ErrNotFound
	case statusCode >= 200 && statusCode < 300:
		cause = ErrUnsuccessful
	default:
		cause = ErrTransport
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &APIError{StatusCode: statusCode, Message: message, Cause: cause}
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Cause }

// ValidationError carries per-field form failures. It never reaches the network.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, n+": "+e.Fields[n])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records a field failure, keeping the first message per field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Message returns the user facing text for err, falling back when err carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so packages need a single errors import.
func New(text string) error {
	return errors.New(text)
}
