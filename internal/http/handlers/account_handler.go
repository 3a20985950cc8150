package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evamaria/fanchat-backend/internal/http/middleware"
)

// ChangePasswordRequest carries a password rotation payload. The current
// password is re-verified before any change is applied.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// DeleteAccountRequest carries the re-authentication password for deletion.
type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// AvatarResponse is returned after a successful avatar upload.
type AvatarResponse struct {
	ProfilePicture string `json:"profilePicture"`
}

// Me godoc
// @Summary      Current profile
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserProfile
// @Failure      401  {object}  ErrorResponse
// @Router       /me [get]
func (h *Handlers) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)

	profile, err := h.accounts.Profile(c.Request.Context(), uid)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, profile)
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Re-verifies the current password, then replaces it.
// @Tags         account
// @Accept       json
// @Security     BearerAuth
// @Param        payload  body  ChangePasswordRequest  true  "Password rotation"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /me/password [put]
func (h *Handlers) ChangePassword(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeBadRequest, "currentPassword, newPassword and confirmPassword are required")
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), uid, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		mapServiceError(c, err)
		return
	}
	noContent(c)
}

// UpdateAvatar godoc
// @Summary      Upload profile picture
// @Description  Accepts a multipart form with an "avatar" file part. The
// @Description  upload must be an image and is capped in size.
// @Tags         account
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Image file"
// @Success      200  {object}  AvatarResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /me/avatar [put]
func (h *Handlers) UpdateAvatar(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)

	file, _, err := c.Request.FormFile("avatar")
	if err != nil {
		fail(c, http.StatusBadRequest, CodeBadRequest, "multipart field \"avatar\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(c, http.StatusBadRequest, CodeBadRequest, "could not read upload")
		return
	}

	url, err := h.accounts.UpdateAvatar(c.Request.Context(), uid, data)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, AvatarResponse{ProfilePicture: url})
}

// DeleteAccount godoc
// @Summary      Delete account
// @Description  Re-verifies the password, then removes the profile and its
// @Description  stored avatar. Chat history is retained for the admin inbox.
// @Tags         account
// @Accept       json
// @Security     BearerAuth
// @Param        payload  body  DeleteAccountRequest  true  "Re-authentication"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Router       /me [delete]
func (h *Handlers) DeleteAccount(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)

	var req DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeBadRequest, "password is required")
		return
	}

	if err := h.accounts.DeleteAccount(c.Request.Context(), uid, req.Password); err != nil {
		mapServiceError(c, err)
		return
	}
	noContent(c)
}
