package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/suitability/pkg/errors"
)

func TestConstructors_StatusAndCategory(t *testing.T) {
	tests := []struct {
		name     string
		err      errors.AppError
		code     errors.ErrorCode
		status   int
		category string
	}{
		{"invalid tenant", errors.ErrInvalidTenant("nonexistent"), errors.CodeInvalidTenant, http.StatusBadRequest, errors.CategoryClient},
		{"invalid configuration", errors.ErrInvalidConfiguration("riskLevels is required"), errors.CodeInvalidConfiguration, http.StatusBadRequest, errors.CategoryClient},
		{"already exists", errors.ErrAlreadyExists("wealth"), errors.CodeAlreadyExists, http.StatusConflict, errors.CategoryClient},
		{"not found", errors.ErrNotFound("wealth"), errors.CodeNotFound, http.StatusNotFound, errors.CategoryClient},
		{"protected", errors.ErrProtectedTenant("retail"), errors.CodeProtectedTenant, http.StatusForbidden, errors.CategoryClient},
		{"internal", errors.ErrInternal("boom"), errors.CodeInternal, http.StatusInternalServerError, errors.CategoryServer},
		{"storage", errors.ErrStorage("get", fmt.Errorf("disk full")), errors.CodeStorage, http.StatusInternalServerError, errors.CategoryServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code())
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
			assert.Equal(t, tt.category, errors.Category(tt.err))
		})
	}
}

func TestInvalidTenant_CarriesTenantID(t *testing.T) {
	err := errors.ErrInvalidTenant("nonexistent")
	assert.Equal(t, "Invalid tenant: nonexistent", err.Error())
	assert.Equal(t, "nonexistent", err.Metadata()["tenant_id"])
}

func TestAsAppError_FindsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("scoring: %w", errors.ErrInvalidTenant("x"))

	appErr, ok := errors.AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, errors.CodeInvalidTenant, appErr.Code())
	assert.True(t, errors.HasCode(wrapped, errors.CodeInvalidTenant))
	assert.False(t, errors.IsNotFoundError(wrapped))
}

func TestStorageError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := errors.ErrStorage("save", cause)
	assert.ErrorIs(t, err, cause)
}

func TestToErrorResponse(t *testing.T) {
	t.Run("app error keeps code and metadata", func(t *testing.T) {
		resp := errors.ToErrorResponse(errors.ErrProtectedTenant("retail"))
		assert.Equal(t, "protected_tenant", resp.Error)
		assert.Equal(t, errors.CategoryClient, resp.Category)
		assert.Equal(t, "retail", resp.Metadata["tenant_id"])
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		resp := errors.ToErrorResponse(stderrors.New("unexpected"))
		assert.Equal(t, "internal_error", resp.Error)
		assert.Equal(t, errors.CategoryServer, resp.Category)
		assert.Nil(t, resp.Metadata)
		assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatus(stderrors.New("x")))
	})
}
