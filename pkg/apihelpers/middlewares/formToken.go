package middlewares

import (
	"log/slog"
	"net/http"
	"strings"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
	"github.com/gin-gonic/gin"
)

// AccessTokenLookup resolves an opaque form link token to its record.
type AccessTokenLookup interface {
	GetAccessToken(token string) (formTypes.AccessToken, error)
}

// GetAndValidateFormToken resolves the questionnaire link token from the
// Authorization header (or token query parameter for direct links) and
// attaches the granted form ID to the context. Unknown and expired tokens
// are both reported as forbidden so the token value leaks nothing about
// whether it once existed.
func GetAndValidateFormToken(tokens AccessTokenLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractFormToken(c)
		if token == "" {
			slog.Warn("no form token found in request")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired link"})
			return
		}

		at, err := tokens.GetAccessToken(token)
		if err != nil {
			slog.Warn("unknown form token presented")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired link"})
			return
		}
		if at.IsExpired() {
			slog.Warn("expired form token presented", slog.String("formID", at.FormID.Hex()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired link"})
			return
		}

		c.Set("formID", at.FormID.Hex())
		c.Next()
	}
}

func extractFormToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.Query("token")
}
