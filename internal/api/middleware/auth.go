// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"chemnitz-facilities-api/internal/auth"
	"chemnitz-facilities-api/internal/models"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "current_user"

// UserResolver turns a bearer token into the account it belongs to.
type UserResolver interface {
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

// Authenticate validates the bearer token and stores the caller's account in
// the request context. Missing, malformed, expired and orphaned tokens all
// get the same 401.
func Authenticate(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			Unauthorized(c, "Authorization header is required")
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			Unauthorized(c, "Could not validate credentials")
			return
		}

		user, err := users.UserFromToken(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				Unauthorized(c, "Could not validate credentials")
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the account stored by Authenticate.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// Unauthorized aborts with 401 and the bearer challenge header.
func Unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
