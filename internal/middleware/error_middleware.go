package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halil/studentdesk/internal/app/models/dto"
	"github.com/halil/studentdesk/internal/pkg/apperrors"
	"github.com/halil/studentdesk/internal/pkg/logger"
)

// HandleAPIError maps service errors to HTTP responses. Controllers funnel
// every error through here so the status codes and messages stay consistent.
func HandleAPIError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Validation failed", validationErr.Errors))
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("Validation failed"))
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("Email already registered"))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("Invalid email or password"))
	case errors.Is(err, apperrors.ErrInvalidResetToken):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid or expired reset token"))
	case apperrors.Is(err, apperrors.ErrUnauthorized, apperrors.ErrTokenExpired, apperrors.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("Authentication required"))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, dto.NewErrorResponse("Permission denied"))
	case errors.Is(err, apperrors.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("User not found"))
	case errors.Is(err, apperrors.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("Student not found"))
	case errors.Is(err, apperrors.ErrUpstreamFailure):
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse("Image host is unavailable, please try again later"))
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error"))
	}
}
