package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evamaria/fanchat-backend/internal/auth"
	"github.com/evamaria/fanchat-backend/internal/domain"
)

// CredentialsRequest carries an email and password pair.
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required" example:"fan@example.com"`
	Password string `json:"password" binding:"required" example:"hunter22"`
}

// SessionResponse is returned after a successful signup or login.
type SessionResponse struct {
	Token   string             `json:"token"`
	Profile domain.UserProfile `json:"profile"`
}

// Signup godoc
// @Summary      Register a new account
// @Description  Creates a user profile and returns a bearer token for it.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      CredentialsRequest  true  "Email and password"
// @Success      201      {object}  SessionResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Router       /auth/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeBadRequest, "email and password are required")
		return
	}

	profile, err := h.accounts.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	token, err := auth.SignToken(profile.UID, profile.Role, h.tokenSecret, h.tokenTTL)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "could not issue token")
		return
	}

	ok(c, http.StatusCreated, SessionResponse{Token: token, Profile: *profile})
}

// Login godoc
// @Summary      Log in
// @Description  Verifies credentials and returns a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      CredentialsRequest  true  "Email and password"
// @Success      200      {object}  SessionResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeBadRequest, "email and password are required")
		return
	}

	profile, err := h.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	token, err := auth.SignToken(profile.UID, profile.Role, h.tokenSecret, h.tokenTTL)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "could not issue token")
		return
	}

	ok(c, http.StatusOK, SessionResponse{Token: token, Profile: *profile})
}
