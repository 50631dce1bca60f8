package middleware

import (
	"net/http"
	"strings"

	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// actorKey is the gin context key the resolved actor is stored under.
const actorKey = "actor"

// Actor returns the actor resolved for this request, or the anonymous
// actor when no middleware stored one.
func Actor(c *gin.Context) permissions.Actor {
	if v, exists := c.Get(actorKey); exists {
		if actor, ok := v.(permissions.Actor); ok {
			return actor
		}
	}
	return permissions.Anonymous
}

// AuthRequired rejects requests without a valid bearer token. The user
// row is reloaded on every request so role changes take effect
// immediately rather than at the token's expiry.
func AuthRequired(authService service.AuthService, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		userID, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(actorKey, permissions.ActorFromUser(user))
		c.Next()
	}
}
