package middleware

import (
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// userIDKey and userRoleKey hold the authenticated identity in the Gin and request contexts.
const (
	userIDKey   = contextKey("userID")
	userRoleKey = contextKey("userRole")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if userID, ok := c.Request.Context().Value(userIDKey).(string); ok {
			return userID, true
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}

	return userID, true
}

// GetUserRoleFromContext retrieves the role claim of the authenticated user.
func GetUserRoleFromContext(c *gin.Context) (domain.UserRole, bool) {
	if roleVal, exists := c.Get(string(userRoleKey)); exists {
		role, ok := roleVal.(domain.UserRole)
		return role, ok
	}
	if role, ok := c.Request.Context().Value(userRoleKey).(domain.UserRole); ok {
		return role, true
	}
	return "", false
}
