package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medica-server/internal/access"
	"medica-server/internal/config"
	"medica-server/internal/utils"
)

const principalKey = "principal"

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		c.Set(principalKey, access.Principal{
			UserID:    claims.UserID,
			Role:      claims.Role,
			Superuser: claims.Superuser,
		})
		c.Next()
	}
}

// Require rejects callers that do not satisfy policy. It must run after AuthMiddleware.
func Require(policy access.Policy, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.Authorize(Principal(c), policy); err != nil {
			utils.RespondError(c, log, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Principal returns the authenticated caller, or the anonymous zero value.
func Principal(c *gin.Context) access.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return access.Principal{}
	}
	p, _ := v.(access.Principal)
	return p
}

// SetPrincipal stores p as the caller. Tests use it to skip token handling.
func SetPrincipal(c *gin.Context, p access.Principal) {
	c.Set(principalKey, p)
}
