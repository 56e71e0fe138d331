package shared

import (
	"errors"
	"fmt"
)

// ErrConcurrentModification is returned by repositories when an optimistic
// version check fails. Callers reload the aggregate and retry.
var ErrConcurrentModification = errors.New("concurrent modification")

// ValidationError - malformed input (empty sku, negative amount, bad
// currency code). Maps to HTTP 400.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError - missing aggregate by id or sku. Maps to HTTP 404.
type NotFoundError struct {
	Resource string
	Key      string
}

func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// BusinessRuleViolationError - forbidden state transition, over-reservation,
// over-release. Maps to HTTP 422. For transition failures Current and
// Attempted carry the state machine context.
type BusinessRuleViolationError struct {
	Message   string
	Current   string
	Attempted string
}

func NewBusinessRuleError(message string) *BusinessRuleViolationError {
	return &BusinessRuleViolationError{Message: message}
}

// NewTransitionError reports an attempted transition that is illegal from
// the aggregate's current state.
func NewTransitionError(aggregate, current, attempted string) *BusinessRuleViolationError {
	return &BusinessRuleViolationError{
		Message:   fmt.Sprintf("cannot %s: %s status is %s", attempted, aggregate, current),
		Current:   current,
		Attempted: attempted,
	}
}

func (e *BusinessRuleViolationError) Error() string {
	return e.Message
}

// InfrastructureError - store or gateway failure. Maps to HTTP 500.
// Retryable at the handler boundary where the operation is idempotent.
type InfrastructureError struct {
	Op  string
	Err error
}

func NewInfrastructureError(op string, err error) *InfrastructureError {
	return &InfrastructureError{Op: op, Err: err}
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsBusinessRuleViolation reports whether err is (or wraps) a
// BusinessRuleViolationError.
func IsBusinessRuleViolation(err error) bool {
	var br *BusinessRuleViolationError
	return errors.As(err, &br)
}
