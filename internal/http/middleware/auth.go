// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides bearer-token authentication and role gating. Every
// protected route group runs AuthRequired, which verifies the JWT, stashes
// the caller identity ("userID", "userRole") in the Gin context, and
// rejects anonymous callers. The persona proxy sits behind the same gate
// and is never reachable without a verified identity.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/evamaria/fanchat-backend/internal/auth"
)

// Context keys set by AuthRequired.
const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
)

// bearerToken extracts the credential from "Authorization: Bearer <tok>",
// falling back to the "token" query parameter for WebSocket upgrades
// (browsers cannot set headers on those).
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Query("token")
}

// AuthRequired verifies the session token and populates the caller identity.
// Unauthenticated requests are aborted with 401.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "authentication required",
			})
			return
		}
		claims, err := auth.ParseToken(tok, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "invalid or expired token",
			})
			return
		}
		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxUserRole, claims.Role)
		c.Next()
	}
}

// AdminRequired gates operator-only routes. Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get(CtxUserRole); role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "forbidden",
				"message": "operator access required",
			})
			return
		}
		c.Next()
	}
}
