package users_middleware

import (
	"net/http"
	"strings"

	users_enums "untitledone/internal/features/users/enums"
	users_models "untitledone/internal/features/users/models"

	"github.com/gin-gonic/gin"
)

type TokenAuthenticator interface {
	GetUserFromToken(token string) (*users_models.User, error)
}

// AuthMiddleware validates JWT token and adds user to context
func AuthMiddleware(authenticator TokenAuthenticator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token == "" {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			ctx.Abort()
			return
		}

		user, err := authenticator.GetUserFromToken(token)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			ctx.Abort()
			return
		}

		ctx.Set("user", user)
		ctx.Next()
	}
}

// OptionalAuthMiddleware sets the user when a valid token is present and
// lets anonymous requests through.
func OptionalAuthMiddleware(authenticator TokenAuthenticator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token := extractToken(ctx); token != "" {
			if user, err := authenticator.GetUserFromToken(token); err == nil {
				ctx.Set("user", user)
			}
		}

		ctx.Next()
	}
}

func RequireRole(requiredRole users_enums.UserRole) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := GetUserFromContext(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			ctx.Abort()
			return
		}

		if user.Role != requiredRole {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

// GetUserFromContext helper function to extract user from gin context
func GetUserFromContext(ctx *gin.Context) (*users_models.User, bool) {
	userInterface, exists := ctx.Get("user")
	if !exists {
		return nil, false
	}

	user, ok := userInterface.(*users_models.User)

	return user, ok
}

// browsers cannot set headers on websocket upgrades, so ?access_token= is accepted too
func extractToken(ctx *gin.Context) string {
	token := ctx.GetHeader("Authorization")
	if token == "" {
		return ctx.Query("access_token")
	}

	return strings.TrimPrefix(token, "Bearer ")
}
