package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
// Validation errors are raised before any write and are never retried.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the resource is not in a state that allows the operation.
var ErrConflict = errors.New("conflict")

// ErrInternal indicates an unexpected failure.
var ErrInternal = errors.New("internal error")

// ErrConcurrency indicates that another caller is currently processing the same resource.
// Callers may retry according to their own policy.
var ErrConcurrency = errors.New("concurrency error")

// ErrDomainConstraint indicates that a business rule rejected the operation
// (overlapping subscription period, double refund, settlement without expense).
var ErrDomainConstraint = errors.New("domain constraint violated")

// ErrExternalDependency indicates that a round trip to an external provider failed.
var ErrExternalDependency = errors.New("external dependency error")

// AppError carries an HTTP-ish status code together with a message and the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError creates an AppError wrapping ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation}
}

// NewNotFoundError creates an AppError wrapping ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewConcurrencyError creates an AppError wrapping ErrConcurrency.
func NewConcurrencyError(message string) *AppError {
	return &AppError{Code: 409, Message: message, Err: ErrConcurrency}
}

// NewDomainConstraintError creates an AppError wrapping ErrDomainConstraint.
func NewDomainConstraintError(message string) *AppError {
	return &AppError{Code: 422, Message: message, Err: ErrDomainConstraint}
}

// ProviderError is returned when a payment provider round trip fails.
// Payload holds provider specific continuation data (e.g. a step-up authentication
// challenge) and is handed to the client untouched.
type ProviderError struct {
	Provider string
	Message  string
	Payload  map[string]any
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Is makes every ProviderError match ErrExternalDependency.
func (e *ProviderError) Is(target error) bool {
	return target == ErrExternalDependency
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the caller may retry the failed operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrency)
}
