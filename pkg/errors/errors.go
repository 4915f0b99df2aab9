package errors

import (
	"fmt"
)

// ParseError represents a manifest parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures manifest or settings validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AuthError indicates the platform rejected the supplied credentials.
// It is fatal for the whole run: retrying cannot fix a bad credential.
type AuthError struct {
	Status int
	Err    error
}

// NewAuthError constructs an AuthError for the given HTTP status.
func NewAuthError(status int, err error) error {
	return &AuthError{Status: status, Err: err}
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status > 0 {
		return fmt.Sprintf("authentication failed: HTTP %d", e.Status)
	}
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NetworkError represents a transport-level failure, including timeouts.
type NetworkError struct {
	Op  string
	Err error
}

// NewNetworkError constructs a NetworkError for the given operation.
func NewNetworkError(op string, err error) error {
	return &NetworkError{Op: op, Err: err}
}

func (e *NetworkError) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *NetworkError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPError carries a non-2xx response status and body for diagnostics.
type HTTPError struct {
	Status int
	Method string
	Path   string
	Body   string
}

// NewHTTPError constructs an HTTPError from a response.
func NewHTTPError(method, path string, status int, body string) error {
	return &HTTPError{Status: status, Method: method, Path: path, Body: body}
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d on %s %s: %s", e.Status, e.Method, e.Path, e.Body)
	}
	return fmt.Sprintf("HTTP %d on %s %s", e.Status, e.Method, e.Path)
}

// ConsistencyError signals that a paginated fetch returned conflicting
// attributes for the same identifier across pages. The remote view cannot
// be trusted, so the fetch for that kind is aborted.
type ConsistencyError struct {
	Kind       string
	Identifier string
}

// NewConsistencyError constructs a ConsistencyError.
func NewConsistencyError(kind, identifier string) error {
	return &ConsistencyError{Kind: kind, Identifier: identifier}
}

func (e *ConsistencyError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("consistency error: %s %q returned conflicting attributes across pages", e.Kind, e.Identifier)
}

// RetryExhaustedError wraps the last failure after the retry budget ran out.
type RetryExhaustedError struct {
	Attempts int
	Err      error
}

// NewRetryExhaustedError constructs a RetryExhaustedError.
func NewRetryExhaustedError(attempts int, err error) error {
	return &RetryExhaustedError{Attempts: attempts, Err: err}
}

func (e *RetryExhaustedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("exhausted retries after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap exposes the last failure.
func (e *RetryExhaustedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AdapterError indicates issues within adapter registration or payload shaping.
type AdapterError struct {
	Kind    string
	Message string
	Err     error
}

// NewAdapterError constructs an AdapterError for the given kind.
func NewAdapterError(kind string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &AdapterError{Kind: kind, Message: message, Err: err}
}

func (e *AdapterError) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind != "" {
		return fmt.Sprintf("adapter error [%s]: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("adapter error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *AdapterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
