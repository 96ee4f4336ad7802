package middlewares

import (
	"log/slog"
	"net/http"

	jwthandling "github.com/fmb1991/broker-forms-vf/pkg/jwt-handling"
	"github.com/gin-gonic/gin"
)

const AdminSessionCookieName = "admin_session"

// RequireAdminSession validates the admin session cookie set by the login
// endpoint and attaches the parsed claims to the context.
func RequireAdminSession(tokenSignKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AdminSessionCookieName)
		if err != nil || token == "" {
			slog.Warn("no admin session cookie found")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		parsedToken, ok, err := jwthandling.ValidateAdminSessionToken(token, tokenSignKey)
		if err != nil || !ok {
			if err != nil {
				slog.Warn("admin session validation failed", slog.String("error", err.Error()))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session invalid or expired"})
			return
		}

		c.Set("validatedAdminSession", parsedToken)
		c.Next()
	}
}
