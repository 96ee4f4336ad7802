package apihandlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/fmb1991/broker-forms-vf/pkg/apihelpers/middlewares"
	jwthandling "github.com/fmb1991/broker-forms-vf/pkg/jwt-handling"
)

func (h *HttpEndpoints) AddAdminAuthAPI(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", mw.RequirePayload(), h.adminLogin)
		authGroup.POST("/logout", h.adminLogout)
	}
}

// adminLogin exchanges the shared operator secret for a session cookie.
// The submitted email is only recorded in the session claims so actions
// can be attributed within the small brokerage team.
func (h *HttpEndpoints) adminLogin(c *gin.Context) {
	var req struct {
		Email  string `json:"email"`
		Secret string `json:"secret"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Email == "" || req.Secret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and secret are required"})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.adminSecret)) != 1 {
		slog.Warn("failed admin login attempt", slog.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := jwthandling.GenerateNewAdminSessionToken(h.sessionExpiresIn, req.Email, h.sessionSignKey)
	if err != nil {
		slog.Error("error generating admin session token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error during login"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(mw.AdminSessionCookieName, token, int(h.sessionExpiresIn.Seconds()), "/", "", h.useSecureCookies, true)

	slog.Info("admin logged in", slog.String("email", req.Email))
	c.JSON(http.StatusOK, gin.H{"expiresIn": int(h.sessionExpiresIn.Seconds())})
}

func (h *HttpEndpoints) adminLogout(c *gin.Context) {
	c.SetCookie(mw.AdminSessionCookieName, "", -1, "/", "", h.useSecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"loggedOut": true})
}
