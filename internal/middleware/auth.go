package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/platform/internal/services"
	"github.com/schoolhub/platform/internal/tenancy"
)

const (
	principalKey  = "principal"
	sessionCookie = "session_token"
)

// SessionPrincipal verifies the session token (Authorization header for API
// clients, cookie for the UI) and attaches the resulting Principal to the
// request. It never rejects on its own; missing or bad tokens just leave the
// request unauthenticated for the guard and validators to classify.
func SessionPrincipal(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(sessionCookie)
		}
		if token != "" {
			if claims, err := authService.VerifyToken(token); err == nil {
				c.Set(principalKey, claims.Principal())
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Principal returns the authenticated principal for the request, or nil.
func Principal(c *gin.Context) *tenancy.Principal {
	if v, exists := c.Get(principalKey); exists {
		if p, ok := v.(*tenancy.Principal); ok {
			return p
		}
	}
	return nil
}

// SetPrincipal is used by tests to install a principal directly.
func SetPrincipal(c *gin.Context, p *tenancy.Principal) {
	c.Set(principalKey, p)
}

// RequireRole aborts with 403 unless the principal's role is in the allowed
// set. Platform admins always pass.
func RequireRole(roles ...tenancy.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := Principal(c)
		if p == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if p.Role == tenancy.RolePlatformAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		c.Abort()
	}
}
