package middleware

import (
	"net/http"
	"strings"

	"go-glass-dispatch/internal/auth"
	"go-glass-dispatch/internal/reference"
	"go-glass-dispatch/internal/workflow"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	KeyUserID = "userID"
	KeyName   = "name"
	KeyRole   = "role"
)

// AuthMiddleware checks if the user has a valid JWT token
func AuthMiddleware(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get the token from the "Authorization" header
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		// 2. Remove the "Bearer " prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			return
		}

		// 3. Validate the token
		claims, err := issuer.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 4. Store user info in the context for the handlers to use
		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyName, claims.Name)
		c.Set(KeyRole, claims.Role)

		c.Next()
	}
}

// RequireRole lets through only the listed roles
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(KeyRole)
		for _, r := range allowed {
			if r == role {
				c.Next()
				return
			}
		}
		forbid(c, role, c.Request.Method+" "+c.FullPath())
	}
}

// RequireArea lets through the roles that reference.Permissions grants the area
func RequireArea(area string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(KeyRole)
		if !reference.Allowed(area, role) {
			forbid(c, role, "access "+area)
			return
		}
		c.Next()
	}
}

// ActorFrom reads the signed-in user placed on the context by AuthMiddleware.
func ActorFrom(c *gin.Context) workflow.Actor {
	return workflow.Actor{
		ID:   c.GetUint(KeyUserID),
		Name: c.GetString(KeyName),
		Role: c.GetString(KeyRole),
	}
}

func forbid(c *gin.Context, role, action string) {
	err := &workflow.AuthorizationError{Role: role, Action: action}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
}
