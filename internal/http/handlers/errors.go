package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evamaria/fanchat-backend/internal/services"
)

// Stable machine-readable error codes used in ErrorResponse.Code.
const (
	CodeBadRequest       = "bad_request"
	CodeInvalidEmail     = "invalid_email"
	CodeEmailTaken       = "email_taken"
	CodeWeakPassword     = "weak_password"
	CodePasswordMismatch = "password_mismatch"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeEmptyMessage     = "empty_message"
	CodeTooLong          = "message_too_long"
	CodeAvatarTooLarge   = "avatar_too_large"
	CodeNotAnImage       = "not_an_image"
	CodeNotConfigured    = "not_configured"
	CodeUpstreamError    = "upstream_error"
	CodeInternal         = "internal_error"
)

// mapServiceError translates service-layer sentinel errors into HTTP
// responses. Unknown errors become an opaque 500.
func mapServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidEmail):
		fail(c, http.StatusBadRequest, CodeInvalidEmail, "invalid email address")
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, CodeEmailTaken, "email already registered")
	case errors.Is(err, services.ErrWeakPassword):
		fail(c, http.StatusBadRequest, CodeWeakPassword, "password does not meet the minimum length")
	case errors.Is(err, services.ErrPasswordMismatch):
		fail(c, http.StatusBadRequest, CodePasswordMismatch, "passwords do not match")
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, CodeUnauthorized, "invalid email or password")
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, CodeNotFound, "user not found")
	case errors.Is(err, services.ErrChatNotFound):
		fail(c, http.StatusNotFound, CodeNotFound, "chat not found")
	case errors.Is(err, services.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, CodeEmptyMessage, "message text must not be empty")
	case errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusBadRequest, CodeTooLong, "message text exceeds the maximum length")
	case errors.Is(err, services.ErrAvatarTooLarge):
		fail(c, http.StatusBadRequest, CodeAvatarTooLarge, "avatar exceeds the maximum allowed size")
	case errors.Is(err, services.ErrNotAnImage):
		fail(c, http.StatusBadRequest, CodeNotAnImage, "uploaded file is not an image")
	default:
		fail(c, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
