package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/jwt"
	"campaignhub/internal/pkg/response"
)

const identityKey = "identity"

// Identity is the authenticated caller resolved from a session token.
type Identity struct {
	UserID   string
	Username string
	Role     domain.UserRole
}

type sessionParser interface {
	ParseSessionToken(token string) (*jwt.Claims, error)
}

// JWTAuth resolves the bearer token into an Identity. Every failure aborts
// with 401; there is no anonymous fallback.
func JWTAuth(tokens sessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortError(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.AbortError(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			response.AbortError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Empty token")
			return
		}

		claims, err := tokens.ParseSessionToken(tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.AbortError(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")
				return
			}
			response.AbortError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Could not validate credentials")
			return
		}

		id := Identity{UserID: claims.UserID, Username: claims.Username, Role: domain.UserRole(claims.Role)}
		c.Set(identityKey, id)
		c.Set("user_id", id.UserID)
		c.Set("role", string(id.Role))

		c.Next()
	}
}

// CurrentIdentity returns the identity stored by JWTAuth.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok && id.UserID != ""
}

// MustIdentity is CurrentIdentity for handlers mounted behind JWTAuth. It
// writes a 401 and returns false when the identity is missing.
func MustIdentity(c *gin.Context) (Identity, bool) {
	id, ok := CurrentIdentity(c)
	if !ok {
		response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
	return id, ok
}
