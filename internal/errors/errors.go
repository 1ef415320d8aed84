// Package errors defines the structured error types used across genweave.
//
// Errors are categorized by type so callers can distinguish fatal
// configuration problems, which must stop the build, from validation
// failures reported by the generation engine, which are only fatal when
// the run is configured to treat them that way.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeEngine     ErrorType = "engine"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeInternal   ErrorType = "internal"
)

// BuildError is a structured error with context.
type BuildError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Component   string
	Recoverable bool
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *BuildError) Is(target error) bool {
	var t *BuildError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *BuildError) WithContext(key string, value interface{}) *BuildError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithComponent tags the error with the component that produced it.
func (e *BuildError) WithComponent(component string) *BuildError {
	e.Component = component
	return e
}

// NewConfigError creates a fatal configuration error.
func NewConfigError(code, message string, cause error) *BuildError {
	return &BuildError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewValidationError creates an engine validation error. Whether it stops
// the build is decided by the orchestrator's failure policy, so it is
// marked recoverable here.
func NewValidationError(code, message string) *BuildError {
	return &BuildError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewEngineError creates an error for an engine that could not be
// configured or started at all.
func NewEngineError(code, message string, cause error) *BuildError {
	return &BuildError{
		Type:        ErrorTypeEngine,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *BuildError {
	return &BuildError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsFatal reports whether err must stop the build. Unknown error values
// are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var be *BuildError
	if errors.As(err, &be) {
		return !be.Recoverable
	}

	return true
}

// IsType reports whether err is a BuildError of the given type.
func IsType(err error, errorType ErrorType) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Type == errorType
	}

	return false
}
