package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// IconError is a structured error carrying a machine-readable code and a
// small string context, used for every icon rejection.
type IconError struct {
	Type        ErrorType
	Code        Code
	Message     string
	Cause       error
	Context     map[string]string
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *IconError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+e.Context[k])
		}
		parts = append(parts, "("+strings.Join(pairs, ", ")+")")
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *IconError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *IconError) Is(target error) bool {
	var t *IconError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *IconError) WithContext(key, value string) *IconError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value

	return e
}

// WithFile adds the offending file.
func (e *IconError) WithFile(filePath string) *IconError {
	e.FilePath = filePath

	return e
}

// WithCause attaches an underlying error.
func (e *IconError) WithCause(cause error) *IconError {
	e.Cause = cause

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code Code, message string) *IconError {
	return &IconError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewSecurityError creates a security error.
func NewSecurityError(code Code, message string) *IconError {
	return &IconError{
		Type:        ErrorTypeSecurity,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code Code, message string, cause error) *IconError {
	return &IconError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code Code, message string) *IconError {
	return &IconError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// IsSecurityError checks if an error is security-related.
func IsSecurityError(err error) bool {
	var ie *IconError
	if errors.As(err, &ie) {
		return ie.Type == ErrorTypeSecurity
	}

	return false
}

// CodeOf returns the code of the outermost IconError in err's chain, or
// CodeValidationFailed when err carries none.
func CodeOf(err error) Code {
	var ie *IconError
	if errors.As(err, &ie) && ie.Code != "" {
		return ie.Code
	}

	return CodeValidationFailed
}

// ContextOf returns a copy of the context of the outermost IconError in
// err's chain.
func ContextOf(err error) map[string]string {
	var ie *IconError
	if !errors.As(err, &ie) || len(ie.Context) == 0 {
		return nil
	}

	out := make(map[string]string, len(ie.Context))
	for k, v := range ie.Context {
		out[k] = v
	}

	return out
}
