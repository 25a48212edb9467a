package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

func deny(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// AuthMiddleware requires a bearer token accepted by verifier and stores
// the caller's identity on the context. A nil verifier means the identity
// provider is not configured and every protected route answers 503.
func AuthMiddleware(verifier services.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			deny(c, http.StatusServiceUnavailable, "Authentication service not configured. Please contact administrator.")
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader != "Bearer" && !strings.HasPrefix(authHeader, "Bearer ") {
			deny(c, http.StatusUnauthorized, "No token provided. Authorization required.")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if tokenString == "" {
			deny(c, http.StatusUnauthorized, "Invalid token format")
			return
		}

		id, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "token verification failed", "error", err, "request_id", RequestID(c))
			if errors.Is(err, services.ErrTokenExpired) {
				deny(c, http.StatusUnauthorized, "Token has expired. Please login again.")
				return
			}
			deny(c, http.StatusUnauthorized, "Authentication failed. Invalid or expired token.")
			return
		}

		c.Set(identityKey, *id)
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}
