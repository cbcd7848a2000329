package middleware

import (
	"net/http"

	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRoles lets the request through only when the caller has one of roles.
func RequireRoles(roles ...domain.UserRole) gin.HandlerFunc {
	allowed := make(map[domain.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		if !allowed[id.Role] {
			response.AbortError(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

// CanWrite rejects read-only viewers from mutating campaigns and media.
func CanWrite() gin.HandlerFunc {
	return RequireRoles(domain.RoleAdmin, domain.RoleManager, domain.RoleCreator)
}
