package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/halil/studentdesk/internal/app/models/dto"
	"github.com/halil/studentdesk/internal/pkg/apperrors"
)

func handleError(err error) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	HandleAPIError(c, err)
	return w
}

func TestHandleAPIError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation failed", apperrors.ErrValidationFailed, http.StatusBadRequest},
		{"email already exists", apperrors.ErrEmailAlreadyExists, http.StatusBadRequest},
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid reset token", apperrors.ErrInvalidResetToken, http.StatusBadRequest},
		{"token expired", apperrors.ErrTokenExpired, http.StatusUnauthorized},
		{"token invalid", apperrors.ErrTokenInvalid, http.StatusUnauthorized},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{"permission denied", apperrors.ErrPermissionDenied, http.StatusForbidden},
		{"user not found", apperrors.ErrUserNotFound, http.StatusNotFound},
		{"student not found", apperrors.ErrStudentNotFound, http.StatusNotFound},
		{"upstream failure", apperrors.ErrUpstreamFailure, http.StatusBadGateway},
		{"wrapped upstream failure", fmt.Errorf("%w: 503", apperrors.ErrUpstreamFailure), http.StatusBadGateway},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := handleError(tt.err)
			require.Equal(t, tt.wantStatus, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.False(t, resp.Success)
			require.NotEmpty(t, resp.Message)
		})
	}
}

func TestHandleAPIError_ValidationErrorListsFields(t *testing.T) {
	err := apperrors.NewValidationError("email is required", "password is required")

	w := handleError(err)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, []string{"email is required", "password is required"}, resp.Errors)
}

func TestHandleAPIError_UnknownErrorIsGeneric(t *testing.T) {
	w := handleError(errors.New("pq: connection reset by peer"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "connection reset",
		"internal details must not leak to clients")
}
