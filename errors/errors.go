// Package errors provides standardized error handling patterns for the
// mapping framework. It includes error classification, standard error
// variables, and helper functions for consistent error wrapping across the
// converter, the query parser, and the store drivers.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary store errors that may be retried
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorMapping represents entity conversion failures (missing
	// identifier, missing or unknown discriminator, field coercion)
	ErrorMapping
	// ErrorQuery represents query grammar or parameter binding failures
	ErrorQuery
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorMapping:
		return "mapping"
	case ErrorQuery:
		return "query"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Metadata and conversion errors
	ErrUnknownEntity        = errors.New("entity is not registered")
	ErrIdentifierMissing    = errors.New("entity metadata declares no identifier field")
	ErrDiscriminatorMissing = errors.New("discriminator field is missing from entity")
	ErrDiscriminatorUnknown = errors.New("discriminator value has no registered subtype")
	ErrFieldCoercion        = errors.New("field value cannot be coerced to declared kind")
	ErrDuplicateEntity      = errors.New("entity is already registered")
	ErrNilDomainObject      = errors.New("domain object is nil")

	// Query errors
	ErrMalformedQuery   = errors.New("malformed query")
	ErrUnboundParameter = errors.New("parameter is not bound")
	ErrUnknownParameter = errors.New("parameter is not declared by the query")
	ErrUnsupportedVerb  = errors.New("unsupported query verb")

	// Store and persistence errors
	ErrEntityNotFound    = errors.New("entity not found")
	ErrEntityExists      = errors.New("entity already exists")
	ErrKeyNotFound       = errors.New("key not found")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrConnectionLost    = errors.New("connection lost")
	ErrConnectionTimeout = errors.New("connection timeout")
	ErrValueTooLarge     = errors.New("value exceeds configured maximum size")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsMapping checks if an error originated in entity conversion
func IsMapping(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorMapping
	}

	return errors.Is(err, ErrUnknownEntity) ||
		errors.Is(err, ErrIdentifierMissing) ||
		errors.Is(err, ErrDiscriminatorMissing) ||
		errors.Is(err, ErrDiscriminatorUnknown) ||
		errors.Is(err, ErrFieldCoercion) ||
		errors.Is(err, ErrNilDomainObject)
}

// IsQuery checks if an error originated in query parsing or binding
func IsQuery(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorQuery
	}

	return errors.Is(err, ErrMalformedQuery) ||
		errors.Is(err, ErrUnboundParameter) ||
		errors.Is(err, ErrUnknownParameter) ||
		errors.Is(err, ErrUnsupportedVerb)
}

// IsInvalid checks if an error was caused by invalid input
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return false
}

// IsTransient checks if an error is transient and may be retried
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	if errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrConnectionLost) ||
		errors.Is(err, ErrConnectionTimeout) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"timeout",
		"connection",
		"temporary",
		"unavailable",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// IsFatal checks if an error is fatal and should stop processing
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig)
}

// IsKeyNotFound checks if an error indicates an absent store key
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}

	switch {
	case IsMapping(err):
		return ErrorMapping
	case IsQuery(err):
		return ErrorQuery
	case IsFatal(err):
		return ErrorFatal
	case IsTransient(err):
		return ErrorTransient
	default:
		return ErrorInvalid
	}
}

// newClassified creates a new classified error.
// Internal helper - use NewMapping(), NewQuery(), WrapTransient() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// NewMapping wraps an error as a conversion failure with context
func NewMapping(err error, component, operation, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return newClassified(ErrorMapping, err, component, operation,
		fmt.Sprintf(format, args...)+": "+err.Error())
}

// NewQuery wraps an error as a query failure with context
func NewQuery(err error, component, operation, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return newClassified(ErrorQuery, err, component, operation,
		fmt.Sprintf(format, args...)+": "+err.Error())
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, operation, message string) error {
	if err == nil {
		return nil
	}
	return newClassified(ErrorTransient, err, component, operation,
		fmt.Sprintf("%s.%s: %s: %v", component, operation, message, err))
}

// WrapInvalid wraps an error as invalid input with context
func WrapInvalid(err error, component, operation, message string) error {
	if err == nil {
		return nil
	}
	return newClassified(ErrorInvalid, err, component, operation,
		fmt.Sprintf("%s.%s: %s: %v", component, operation, message, err))
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, operation, message string) error {
	if err == nil {
		return nil
	}
	return newClassified(ErrorFatal, err, component, operation,
		fmt.Sprintf("%s.%s: %s: %v", component, operation, message, err))
}
