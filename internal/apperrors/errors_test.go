package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapsSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "validation", err: apperrors.NewValidationError("amount must not be zero"), target: apperrors.ErrValidation},
		{name: "not found", err: apperrors.NewNotFoundError("order 1 not found"), target: apperrors.ErrNotFound},
		{name: "concurrency", err: apperrors.NewConcurrencyError("already locked"), target: apperrors.ErrConcurrency},
		{name: "domain constraint", err: apperrors.NewDomainConstraintError("already refunded"), target: apperrors.ErrDomainConstraint},
		{name: "wrapped twice", err: fmt.Errorf("service: %w", apperrors.NewConcurrencyError("x")), target: apperrors.ErrConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.target))
		})
	}
}

func TestProviderError_MatchesExternalDependency(t *testing.T) {
	err := fmt.Errorf("charge failed: %w", &apperrors.ProviderError{
		Provider: "stripe",
		Message:  "authentication required",
		Payload:  map[string]any{"type": "requires_action", "clientSecret": "pi_123_secret"},
	})

	assert.True(t, errors.Is(err, apperrors.ErrExternalDependency))
	assert.False(t, errors.Is(err, apperrors.ErrValidation))

	var providerErr *apperrors.ProviderError
	if assert.True(t, errors.As(err, &providerErr)) {
		assert.Equal(t, "pi_123_secret", providerErr.Payload["clientSecret"])
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, apperrors.IsRetryable(apperrors.NewConcurrencyError("busy")))
	assert.False(t, apperrors.IsRetryable(apperrors.NewValidationError("bad")))
	assert.False(t, apperrors.IsRetryable(nil))
}
