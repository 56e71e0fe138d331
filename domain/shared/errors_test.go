package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	validation := NewValidationError("sku", "is required")
	notFound := NewNotFoundError("order", "abc")
	rule := NewBusinessRuleError("insufficient stock")

	assert.True(t, IsValidation(validation))
	assert.False(t, IsValidation(notFound))

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(rule))

	assert.True(t, IsBusinessRuleViolation(rule))
	assert.False(t, IsBusinessRuleViolation(validation))
}

func TestTransitionError(t *testing.T) {
	err := NewTransitionError("order", "SHIPPED", "cancel")
	assert.True(t, IsBusinessRuleViolation(err))
	assert.Contains(t, err.Error(), "SHIPPED")
	assert.Contains(t, err.Error(), "cancel")
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading product: %w", NewNotFoundError("product", "SKU-1"))
	assert.True(t, IsNotFound(wrapped))
}

func TestConcurrentModificationSentinel(t *testing.T) {
	wrapped := fmt.Errorf("update failed: %w", ErrConcurrentModification)
	assert.True(t, errors.Is(wrapped, ErrConcurrentModification))
}
