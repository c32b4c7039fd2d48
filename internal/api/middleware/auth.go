package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"urgentsales/server/internal/auth"
	"urgentsales/server/internal/listing"
)

const actorKey = "actor"

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// RequireAuth rejects requests without a valid session token and puts
// the actor on the context.
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := auth.ParseToken(jwtSecret, bearerToken(c))
		if err != nil || claims.Scope != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(actorKey, listing.Actor{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  listing.Role(claims.Role),
		})
		c.Next()
	}
}

// OptionalAuth puts the actor on the context when a valid token is
// present and lets the request through either way.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := auth.ParseToken(jwtSecret, token); err == nil && claims.Scope == "" {
				c.Set(actorKey, listing.Actor{
					ID:    claims.UserID,
					Email: claims.Email,
					Role:  listing.Role(claims.Role),
				})
			}
		}
		c.Next()
	}
}

// RequireAdmin comes after RequireAuth and gates staff endpoints.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok || actor.Role != listing.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// Actor returns the authenticated actor, when there is one.
func Actor(c *gin.Context) (listing.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return listing.Actor{}, false
	}
	actor, ok := v.(listing.Actor)
	return actor, ok
}
