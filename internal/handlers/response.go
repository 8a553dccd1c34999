package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/speechpal-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps service sentinels onto HTTP statuses so handlers
// do not each reinvent the table.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		RespondError(c, http.StatusNotFound, "user_not_found", err)
	case errors.Is(err, services.ErrInvalidPayload):
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
	case errors.Is(err, services.ErrInvalidStarter):
		RespondError(c, http.StatusBadRequest, "invalid_starter", err)
	case errors.Is(err, services.ErrCustomizationLocked):
		RespondError(c, http.StatusForbidden, "customization_locked", err)
	case errors.Is(err, services.ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "invalid_credentials", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
