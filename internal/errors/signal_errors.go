package errors

import (
	"fmt"
	"strings"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// Critical errors that should stop the service
	ErrorCategoryFatal         ErrorCategory = "FATAL"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
	ErrorCategoryCredentials   ErrorCategory = "CREDENTIALS"

	// Non-critical errors that can be retried or recovered from
	ErrorCategoryNetwork      ErrorCategory = "NETWORK"
	ErrorCategoryTimeout      ErrorCategory = "TIMEOUT"
	ErrorCategoryValidation   ErrorCategory = "VALIDATION"
	ErrorCategoryNotification ErrorCategory = "NOTIFICATION"
	ErrorCategoryJournal      ErrorCategory = "JOURNAL"
	ErrorCategoryPricing      ErrorCategory = "PRICING"

	// Temporary errors
	ErrorCategoryTemporary ErrorCategory = "TEMPORARY"
	ErrorCategoryRateLimit ErrorCategory = "RATE_LIMIT"
)

// SignalError represents a categorized error with context
type SignalError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
	Retryable  bool
}

// Error implements the error interface
func (e *SignalError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *SignalError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns whether this error can be retried
func (e *SignalError) IsRetryable() bool {
	return e.Retryable
}

// IsFatal returns whether this error should stop the service
func (e *SignalError) IsFatal() bool {
	return e.Category == ErrorCategoryFatal ||
		e.Category == ErrorCategoryCredentials ||
		e.Category == ErrorCategoryConfiguration
}

// New creates a new categorized signal error
func New(category ErrorCategory, component, operation, message string) *SignalError {
	return &SignalError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
		Retryable: isRetryableCategory(category),
	}
}

// Wrap wraps an existing error with signal error context
func Wrap(err error, category ErrorCategory, component, operation string) *SignalError {
	if err == nil {
		return nil
	}

	return &SignalError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
		Retryable:  isRetryableCategory(category),
	}
}

// WithContext adds context information to the error
func (e *SignalError) WithContext(key string, value interface{}) *SignalError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRetryable sets the retryable flag
func (e *SignalError) WithRetryable(retryable bool) *SignalError {
	e.Retryable = retryable
	return e
}

// isRetryableCategory determines if an error category is generally retryable
func isRetryableCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryNetwork, ErrorCategoryTimeout, ErrorCategoryTemporary, ErrorCategoryRateLimit:
		return true
	case ErrorCategoryFatal, ErrorCategoryCredentials, ErrorCategoryConfiguration:
		return false
	default:
		return true
	}
}

// Categorize attempts to categorize a generic error
func Categorize(err error, component, operation string) *SignalError {
	if err == nil {
		return nil
	}

	// Check if it's already a SignalError
	if sigErr, ok := err.(*SignalError); ok {
		return sigErr
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "context deadline exceeded") {
		return Wrap(err, ErrorCategoryTimeout, component, operation)
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dns") || strings.Contains(errMsg, "dial") {
		return Wrap(err, ErrorCategoryNetwork, component, operation)
	}

	if strings.Contains(errMsg, "token") || strings.Contains(errMsg, "authentication") ||
		strings.Contains(errMsg, "unauthorized") {
		return Wrap(err, ErrorCategoryCredentials, component, operation)
	}

	if strings.Contains(errMsg, "rate limit") || strings.Contains(errMsg, "too many requests") {
		return Wrap(err, ErrorCategoryRateLimit, component, operation)
	}

	if strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "not found") ||
		strings.Contains(errMsg, "not recognized") || strings.Contains(errMsg, "not configured") {
		return Wrap(err, ErrorCategoryValidation, component, operation).WithRetryable(false)
	}

	// Default to temporary error for unknown cases
	return Wrap(err, ErrorCategoryTemporary, component, operation)
}

// Common error constructors
func NewNetworkError(component, operation string, err error) *SignalError {
	return Wrap(err, ErrorCategoryNetwork, component, operation)
}

func NewTimeoutError(component, operation string, err error) *SignalError {
	return Wrap(err, ErrorCategoryTimeout, component, operation)
}

func NewValidationError(component, operation, message string) *SignalError {
	return New(ErrorCategoryValidation, component, operation, message).WithRetryable(false)
}

func NewConfigurationError(component, operation, message string) *SignalError {
	return New(ErrorCategoryConfiguration, component, operation, message).WithRetryable(false)
}

func NewCredentialsError(component, operation, message string) *SignalError {
	return New(ErrorCategoryCredentials, component, operation, message).WithRetryable(false)
}

func NewNotificationError(component, operation string, err error) *SignalError {
	return Wrap(err, ErrorCategoryNotification, component, operation)
}

func NewJournalError(component, operation string, err error) *SignalError {
	return Wrap(err, ErrorCategoryJournal, component, operation)
}

func NewPricingError(component, operation, message string) *SignalError {
	return New(ErrorCategoryPricing, component, operation, message).WithRetryable(false)
}

// ErrorStats tracks error statistics for the /stats command and health checks
type ErrorStats struct {
	TotalErrors      int
	ErrorsByCategory map[ErrorCategory]int
	RecentErrors     []*SignalError
	MaxRecentErrors  int
}

// NewErrorStats creates a new error statistics tracker
func NewErrorStats(maxRecentErrors int) *ErrorStats {
	return &ErrorStats{
		ErrorsByCategory: make(map[ErrorCategory]int),
		RecentErrors:     make([]*SignalError, 0, maxRecentErrors),
		MaxRecentErrors:  maxRecentErrors,
	}
}

// RecordError records an error in the statistics
func (es *ErrorStats) RecordError(err *SignalError) {
	es.TotalErrors++
	es.ErrorsByCategory[err.Category]++

	es.RecentErrors = append(es.RecentErrors, err)

	// Keep only the most recent errors
	if len(es.RecentErrors) > es.MaxRecentErrors {
		es.RecentErrors = es.RecentErrors[1:]
	}
}
