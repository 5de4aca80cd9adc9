package utils

import (
	"net/http"
	"testing"

	"resqlink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceErrorCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		code       string
		statusCode int
	}{
		{"validation", NewValidationError("bad"), models.ErrCodeValidation, http.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("no token"), models.ErrCodeAuthentication, http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("wrong role"), models.ErrCodeAuthorization, http.StatusForbidden},
		{"not found", NewNotFoundError("Emergency"), models.ErrCodeNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("already assigned"), models.ErrCodeConflict, http.StatusBadRequest},
		{"invalid transition", NewInvalidTransitionError("pending", "resolved"), models.ErrCodeInvalidTransition, http.StatusBadRequest},
		{"internal", NewInternalError("boom"), models.ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceErr, ok := GetServiceError(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.code, serviceErr.Code, "service layer shares middleware error codes")
			assert.Equal(t, tt.statusCode, serviceErr.StatusCode)
		})
	}
}
