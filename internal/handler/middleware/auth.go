package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"rental-engine/internal/domain/actor"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenValidator verifies an access token and returns its subject.
type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, actor.Role, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
}

const (
	ctxUserIDKey   = "user_id"
	ctxUserRoleKey = "user_role"
)

func NewAuthMiddleware(tokenValidator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Access token required"},
			})
			return
		}

		userID, role, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Invalid or expired token"},
			})
			return
		}

		SetActor(c, actor.Actor{ID: userID, Role: role})
		c.Next()
	}
}

// RequireRole admits only the listed roles. Must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...actor.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "Internal server error"},
			})
			return
		}

		if !slices.Contains(roles, a.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "Insufficient permissions"},
			})
			return
		}

		c.Next()
	}
}

// SetActor stores the authenticated caller on the context.
func SetActor(c *gin.Context, a actor.Actor) {
	c.Set(ctxUserIDKey, a.ID)
	c.Set(ctxUserRoleKey, a.Role)
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}

func GetUserRole(c *gin.Context) (actor.Role, bool) {
	userRole, exists := c.Get(ctxUserRoleKey)
	if !exists {
		return "", false
	}

	role, ok := userRole.(actor.Role)
	return role, ok
}

func GetActor(c *gin.Context) (actor.Actor, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return actor.Actor{}, false
	}
	role, ok := GetUserRole(c)
	if !ok {
		return actor.Actor{}, false
	}
	return actor.Actor{ID: id, Role: role}, true
}
