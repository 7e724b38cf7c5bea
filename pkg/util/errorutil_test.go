package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := NewQuotaExceeded("jobs", 5)

	assert.True(t, HasCode(err, "QUOTA_EXCEEDED"))
	assert.False(t, HasCode(err, "NOT_FOUND"))
	assert.False(t, HasCode(errors.New("plain"), "QUOTA_EXCEEDED"))
	assert.False(t, HasCode(nil, "QUOTA_EXCEEDED"))
}

func TestHasCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewDuplicateName("Acme"))

	assert.True(t, HasCode(err, "DUPLICATE_NAME"))
}

func TestToDomainError(t *testing.T) {
	t.Run("passes through domain errors", func(t *testing.T) {
		original := NewValidationError("bad input", nil)

		mapped := ToDomainError(original)
		require.NotNil(t, mapped)
		assert.Equal(t, "VALIDATION_FAILED", mapped.Code)
		assert.Equal(t, http.StatusBadRequest, mapped.HTTPStatus)
	})

	t.Run("maps missing rows to not found", func(t *testing.T) {
		mapped := ToDomainError(pgx.ErrNoRows)
		require.NotNil(t, mapped)
		assert.Equal(t, "NOT_FOUND", mapped.Code)
		assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
	})

	t.Run("wraps unknown errors as internal", func(t *testing.T) {
		cause := errors.New("connection reset")

		mapped := ToDomainError(cause)
		require.NotNil(t, mapped)
		assert.Equal(t, "INTERNAL_ERROR", mapped.Code)
		assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
		assert.ErrorIs(t, mapped, cause)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})
}

func TestDomainError_Error(t *testing.T) {
	bare := &DomainError{Message: "plan not found"}
	assert.Equal(t, "plan not found", bare.Error())

	wrapped := &DomainError{Message: "setup failed", Err: errors.New("timeout")}
	assert.Equal(t, "setup failed: timeout", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "timeout")
}
